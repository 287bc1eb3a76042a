package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("", -5*60*60))

func newTestActor(t testing.TB) *Actor {
	a, err := NewActor("Jane Doe", "jane@example.com", testTime)
	require.NoError(t, err)
	return a
}

func newTestMetadata(t testing.TB, sha string, parents ...string) *ObjectMetadata {
	a := newTestActor(t)
	m, err := NewObjectMetadata(ObjectMetadataParams{
		SHA:       sha,
		Author:    a,
		Committer: a,
		Parents:   parents,
	})
	require.NoError(t, err)
	return m
}

func newTestFileChange(t testing.TB, before, after string, kind ModificationKind, ins, del int) *FileChange {
	f, err := NewFileChange(FileChangeParams{
		PathBefore: before,
		PathAfter:  after,
		Kind:       kind,
		Insertions: ins,
		Deletions:  del,
	})
	require.NoError(t, err)
	return f
}

func newTestChangeSet(t testing.TB, mods ...*FileChange) *ChangeSet {
	c, err := NewChangeSet(SummarizeChanges(mods))
	require.NoError(t, err)
	return c
}

func newTestCommit(t testing.TB, summary string, mods ...*FileChange) *Commit {
	c, err := NewCommit(CommitParams{
		Metadata: newTestMetadata(t, "abc12345def67890"),
		Summary:  summary,
		Message:  summary + "\n\nBody.",
		Diff:     newTestChangeSet(t, mods...),
	})
	require.NoError(t, err)
	return c
}

func requireValidationError(t testing.TB, err error) *ValidationError {
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
	return verr
}
