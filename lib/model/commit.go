package model

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aquilax/truncate"
)

const (
	ShortSHALength       = 8
	commitSummaryPreview = 50
)

type CommitParams struct {
	Metadata  *ObjectMetadata
	Summary   string
	Message   string
	Branches  []string
	Tags      []string
	Diff      *ChangeSet
	AISummary string
}

// Commit is the unit consumed by the release note pipeline. Everything is
// fixed at construction except the AI summary, which lives in a cell shared
// by every copy of the Commit.
type Commit struct {
	metadata *ObjectMetadata
	summary  string
	message  string
	branches []string
	tags     []string
	diff     *ChangeSet
	ai       *annotation
}

type annotation struct {
	summary atomic.Pointer[string]
}

func (a *annotation) set(s string) {
	s = normalizeOptionalText(s)
	if s == "" {
		a.summary.Store(nil)
	} else {
		a.summary.Store(&s)
	}
}

func (a *annotation) get() (string, bool) {
	s := a.summary.Load()
	if s == nil {
		return "", false
	}
	return *s, true
}

func NewCommit(p CommitParams) (*Commit, error) {
	v := newValidator("Commit")

	if p.Metadata == nil {
		v.field("metadata", ErrMissing)
	}
	if p.Diff == nil {
		v.field("diff", ErrMissing)
	}

	summary, err := normalizeText(p.Summary, 0)
	v.field("summary", err)

	message, err := normalizeText(p.Message, 0)
	v.field("message", err)

	branches := normalizeRefNames(v, "branches", p.Branches)
	tags := normalizeRefNames(v, "tags", p.Tags)

	if v.failed() {
		return nil, v.err()
	}

	result := &Commit{
		metadata: p.Metadata,
		summary:  summary,
		message:  message,
		branches: branches,
		tags:     tags,
		diff:     p.Diff,
		ai:       &annotation{},
	}
	result.ai.set(p.AISummary)

	return result, nil
}

func normalizeRefNames(v *validator, field string, names []string) []string {
	result := make([]string, 0, len(names))
	for i, name := range names {
		name, err := normalizeText(name, 0)
		if err != nil {
			v.field(fmt.Sprintf("%v[%v]", field, i), err)
			continue
		}
		result = append(result, name)
	}
	return result
}

func (c *Commit) Metadata() *ObjectMetadata {
	return c.metadata
}

func (c *Commit) SHA() string {
	return c.metadata.sha
}

func (c *Commit) ShortSHA() string {
	return c.metadata.ShortSHA(ShortSHALength)
}

func (c *Commit) Summary() string {
	return c.summary
}

func (c *Commit) Message() string {
	return c.message
}

func (c *Commit) Branches() []string {
	return append([]string(nil), c.branches...)
}

func (c *Commit) Tags() []string {
	return append([]string(nil), c.tags...)
}

func (c *Commit) Diff() *ChangeSet {
	return c.diff
}

// SetAISummary attaches the summary produced by a later pipeline stage.
// Blank values clear it.
func (c *Commit) SetAISummary(summary string) {
	c.ai.set(summary)
}

func (c *Commit) AISummary() (string, bool) {
	return c.ai.get()
}

func (c *Commit) HasAISummary() bool {
	_, ok := c.ai.get()
	return ok
}

func (c *Commit) IsMergeCommit() bool {
	return c.metadata.IsMergeCommit()
}

func (c *Commit) IsRootCommit() bool {
	return c.metadata.IsRootCommit()
}

func (c *Commit) TotalChanges() int {
	return c.diff.TotalChanges()
}

func (c *Commit) AffectedPaths() []string {
	return c.diff.AllAffectedPaths()
}

func (c *Commit) String() string {
	summary := c.summary
	if len([]rune(summary)) > commitSummaryPreview {
		summary = truncate.Truncator(summary, commitSummaryPreview, truncate.CutStrategy{}) + "..."
	}

	ai := ""
	if c.HasAISummary() {
		ai = " [AI]"
	}

	return fmt.Sprintf("%v %v (%v)%v", c.ShortSHA(), summary, plurals.Pluralize("file", c.diff.filesChanged, true), ai)
}

func (c *Commit) GoString() string {
	ai := "No"
	if c.HasAISummary() {
		ai = "Yes"
	}

	summary := []rune(c.summary)
	if len(summary) > 30 {
		summary = summary[:30]
	}

	return fmt.Sprintf("Commit(sha=%q, author=%q, summary=%q, branches=%v, tags=%v, files_changed=%v, ai_summary=%v)",
		c.ShortSHA(), c.metadata.author.name, strings.TrimSpace(string(summary))+"...",
		len(c.branches), len(c.tags), c.diff.filesChanged, ai)
}
