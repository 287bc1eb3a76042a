// Package modeltest builds valid model entities for tests of other packages.
package modeltest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pescuma/relnotes/lib/model"
)

var Now = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type CommitSpec struct {
	SHA       string
	Author    string
	Email     string
	When      time.Time
	Parents   []string
	Summary   string
	Message   string
	Branches  []string
	Tags      []string
	Files     []*model.FileChange
	AISummary string

	ChangeType     model.ChangeType
	SourceBranches []string
	TargetBranch   string
	PullRequestID  string
}

func File(t testing.TB, before, after string, kind model.ModificationKind, ins, del int) *model.FileChange {
	f, err := model.NewFileChange(model.FileChangeParams{
		PathBefore: before,
		PathAfter:  after,
		Kind:       kind,
		Insertions: ins,
		Deletions:  del,
	})
	require.NoError(t, err)
	return f
}

func Commit(t testing.TB, s CommitSpec) *model.ClassifiedCommit {
	if s.Author == "" {
		s.Author = "Jane Doe"
	}
	if s.Email == "" {
		s.Email = "jane@example.com"
	}
	if s.When.IsZero() {
		s.When = Now
	}
	if s.Summary == "" {
		s.Summary = "Change " + s.SHA
	}
	if s.Message == "" {
		s.Message = s.Summary
	}
	if s.ChangeType == "" {
		s.ChangeType = model.ChangeDirect
	}
	if s.TargetBranch == "" {
		s.TargetBranch = "main"
	}

	actor, err := model.NewActor(s.Author, s.Email, s.When)
	require.NoError(t, err)

	meta, err := model.NewObjectMetadata(model.ObjectMetadataParams{
		SHA:       s.SHA,
		Author:    actor,
		Committer: actor,
		Parents:   s.Parents,
	})
	require.NoError(t, err)

	diff, err := model.NewChangeSet(model.SummarizeChanges(s.Files))
	require.NoError(t, err)

	commit, err := model.NewCommit(model.CommitParams{
		Metadata:  meta,
		Summary:   s.Summary,
		Message:   s.Message,
		Branches:  s.Branches,
		Tags:      s.Tags,
		Diff:      diff,
		AISummary: s.AISummary,
	})
	require.NoError(t, err)

	cl, err := model.NewChangeClassification(model.ChangeClassificationParams{
		ChangeType:     s.ChangeType,
		SourceBranches: s.SourceBranches,
		TargetBranch:   s.TargetBranch,
		PullRequestID:  s.PullRequestID,
	})
	require.NoError(t, err)

	result, err := model.NewClassifiedCommit(commit, cl)
	require.NoError(t, err)
	return result
}
