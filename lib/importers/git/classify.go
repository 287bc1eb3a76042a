package git

import (
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
)

var (
	mergePullRequestRE  = regexp.MustCompile(`^Merge pull request #(\d+) from (\S+)`)
	mergeBranchRE       = regexp.MustCompile(`^Merge (?:remote-tracking )?branch '([^']+)'`)
	mergeBranchesRE     = regexp.MustCompile(`^Merge (?:remote-tracking )?branches (.+?)(?: into \S+)?$`)
	quotedRE            = regexp.MustCompile(`'([^']+)'`)
	revertRE            = regexp.MustCompile(`(?m)^This reverts commit [0-9a-fA-F]{4,40}`)
	cherryPickRE        = regexp.MustCompile(`\(cherry picked from commit [0-9a-fA-F]{4,40}\)`)
	squashPullRequestRE = regexp.MustCompile(`\(#(\d+)\)$`)
	squashedBodyRE      = regexp.MustCompile(`(?m)^Squashed commit of the following`)
)

// classify derives how a commit entered the target branch from its parents
// and the conventions git and the hosting services use in commit messages.
func classify(gitCommit *object.Commit, summary string, target string) model.ChangeClassificationParams {
	result := model.ChangeClassificationParams{
		TargetBranch: target,
	}

	parents := gitCommit.ParentHashes

	switch {
	case len(parents) == 0:
		result.ChangeType = model.ChangeInitial

	case len(parents) > 2:
		result.ChangeType = model.ChangeOctopus

		if m := mergeBranchesRE.FindStringSubmatch(summary); m != nil {
			names := lo.Map(quotedRE.FindAllStringSubmatch(m[1], -1), func(q []string, _ int) string {
				return q[1]
			})
			if len(names) >= 2 && lo.EveryBy(names, model.IsValidBranchName) {
				result.SourceBranches = names
			}
		}
		if len(result.SourceBranches) < 2 {
			result.SourceBranches = lo.Map(parents[1:], func(h plumbing.Hash, _ int) string {
				return shortHash(h.String())
			})
		}

	case len(parents) == 2:
		result.ChangeType = model.ChangeMerge

		if m := mergePullRequestRE.FindStringSubmatch(summary); m != nil {
			result.PullRequestID = m[1]
			result.SourceBranches = []string{m[2]}
		} else if m := mergeBranchRE.FindStringSubmatch(summary); m != nil {
			result.SourceBranches = []string{m[1]}
		}

		// Names parsed from the subject are free text.
		if len(result.SourceBranches) == 0 || !model.IsValidBranchName(result.SourceBranches[0]) {
			result.SourceBranches = []string{shortHash(parents[1].String())}
		}

	default:
		message := gitCommit.Message

		switch {
		case revertRE.MatchString(message):
			result.ChangeType = model.ChangeRevert

		case cherryPickRE.MatchString(message):
			result.ChangeType = model.ChangeCherryPick

		case squashPullRequestRE.MatchString(summary):
			result.ChangeType = model.ChangeSquash
			result.PullRequestID = squashPullRequestRE.FindStringSubmatch(summary)[1]
			result.SourceBranches = []string{"pull/" + result.PullRequestID + "/head"}

		case squashedBodyRE.MatchString(message):
			result.ChangeType = model.ChangeSquash
			result.SourceBranches = []string{target}

		default:
			result.ChangeType = model.ChangeDirect
		}
	}

	return result
}

func shortHash(hash string) string {
	if len(hash) <= model.ShortSHALength {
		return hash
	}
	return hash[:model.ShortSHALength]
}

// summaryOf returns the first line of a commit message.
func summaryOf(message string) string {
	message = strings.TrimSpace(message)
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSpace(message)
}
