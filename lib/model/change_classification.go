package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type ChangeClassificationParams struct {
	ChangeType     ChangeType
	SourceBranches []string
	TargetBranch   string
	MergeBase      string
	PullRequestID  string
}

// ChangeClassification describes how a commit relates to the branch topology.
type ChangeClassification struct {
	changeType     ChangeType
	sourceBranches []string
	targetBranch   string
	mergeBase      string
	pullRequestID  string
}

func NewChangeClassification(p ChangeClassificationParams) (*ChangeClassification, error) {
	v := newValidator("ChangeClassification")

	if !p.ChangeType.IsValid() {
		v.add("change_type", TypeMismatch,
			errors.Wrapf(ErrUnknownChangeType, "'%v' is not one of %v", p.ChangeType, changeTypeNames()))
	}

	target, err := normalizeBranchName(p.TargetBranch)
	v.field("target_branch", err)

	sources := make([]string, 0, len(p.SourceBranches))
	for i, s := range p.SourceBranches {
		s, err = normalizeBranchName(s)
		if err != nil {
			v.field(fmt.Sprintf("source_branches[%v]", i), err)
			continue
		}
		sources = append(sources, s)
	}

	mergeBase, err := normalizeOptionalSHA(p.MergeBase)
	v.field("merge_base", err)

	if p.ChangeType.IsValid() {
		shape := changeShapes[p.ChangeType]
		if !shape.allows(len(p.SourceBranches)) {
			v.crossField("source_branches", &ChangeShapeError{
				ChangeType:     p.ChangeType,
				SourceBranches: len(p.SourceBranches),
			})
		}
	}

	if v.failed() {
		return nil, v.err()
	}

	return &ChangeClassification{
		changeType:     p.ChangeType,
		sourceBranches: sources,
		targetBranch:   target,
		mergeBase:      mergeBase,
		pullRequestID:  normalizeOptionalText(p.PullRequestID),
	}, nil
}

func (c *ChangeClassification) ChangeType() ChangeType {
	return c.changeType
}

func (c *ChangeClassification) SourceBranches() []string {
	return append([]string(nil), c.sourceBranches...)
}

// SourceBranch returns the only source branch, if there is exactly one.
func (c *ChangeClassification) SourceBranch() (string, bool) {
	if len(c.sourceBranches) != 1 {
		return "", false
	}
	return c.sourceBranches[0], true
}

func (c *ChangeClassification) TargetBranch() string {
	return c.targetBranch
}

func (c *ChangeClassification) MergeBase() (string, bool) {
	return c.mergeBase, c.mergeBase != ""
}

func (c *ChangeClassification) HasMergeBase() bool {
	return c.mergeBase != ""
}

func (c *ChangeClassification) PullRequestID() (string, bool) {
	return c.pullRequestID, c.pullRequestID != ""
}

func (c *ChangeClassification) HasPullRequest() bool {
	return c.pullRequestID != ""
}

func (c *ChangeClassification) Is(types ...ChangeType) bool {
	return lo.Contains(types, c.changeType)
}

func (c *ChangeClassification) IsDirect() bool {
	return c.changeType == ChangeDirect
}

func (c *ChangeClassification) IsMerge() bool {
	return c.changeType == ChangeMerge
}

func (c *ChangeClassification) IsSquash() bool {
	return c.changeType == ChangeSquash
}

func (c *ChangeClassification) IsOctopus() bool {
	return c.changeType == ChangeOctopus
}

func (c *ChangeClassification) IsInitial() bool {
	return c.changeType == ChangeInitial
}

// IsIntegration is true for the types that bring other branches in.
func (c *ChangeClassification) IsIntegration() bool {
	return c.Is(ChangeMerge, ChangeSquash, ChangeOctopus)
}

func (c *ChangeClassification) IsHistoryRewrite() bool {
	return c.Is(ChangeRebase, ChangeAmend)
}

func (c *ChangeClassification) IsBackport() bool {
	return c.Is(ChangeCherryPick, ChangeRevert)
}

func (c *ChangeClassification) String() string {
	switch len(c.sourceBranches) {
	case 0:
		return fmt.Sprintf("%v → %v", c.changeType, c.targetBranch)
	case 1:
		return fmt.Sprintf("%v from %v → %v", c.changeType, c.sourceBranches[0], c.targetBranch)
	default:
		return fmt.Sprintf("%v from %v branches → %v", c.changeType, len(c.sourceBranches), c.targetBranch)
	}
}

func (c *ChangeClassification) GoString() string {
	sources := lo.Map(c.sourceBranches, func(s string, _ int) string { return fmt.Sprintf("%q", s) })

	return fmt.Sprintf("ChangeClassification(change_type=%q, source_branches=[%v], target_branch=%q, merge_base=%v, pull_request_id=%v)",
		c.changeType, strings.Join(sources, ", "), c.targetBranch, optional(c.mergeBase), optional(c.pullRequestID))
}

func optional(s string) string {
	if s == "" {
		return "None"
	}
	return fmt.Sprintf("%q", s)
}
