package model

import (
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeSet(t *testing.T) {
	testgroup.RunInParallel(t, &ChangeSetTests{})
}

type ChangeSetTests struct {
}

func (g *ChangeSetTests) EmptyDiff(t *testgroup.T) {
	c, err := NewChangeSet(ChangeSetParams{})
	t.Require.NoError(err)

	t.True(c.IsEmpty())
	t.Equal(0, c.TotalChanges())
	t.Equal(0, c.ModificationKinds().Size())
	t.Empty(c.AllAffectedPaths())
	t.Equal("Empty diff", c.String())
}

func (g *ChangeSetTests) CountsRequireModifications(t *testgroup.T) {
	for _, p := range []ChangeSetParams{
		{FilesChanged: 1},
		{Insertions: 1},
		{Deletions: 1},
	} {
		_, err := NewChangeSet(p)

		t.ErrorIs(err, ErrCountsWithoutModifications)
		verr := requireValidationError(t.T, err)
		t.True(verr.HasKind(CrossFieldInvariant))
		t.Equal([]string{"modifications"}, verr.Fields())
	}
}

func (g *ChangeSetTests) CountsAreTrusted(t *testgroup.T) {
	f := newTestFileChange(t.T, "", "a.go", Added, 10, 0)

	c, err := NewChangeSet(ChangeSetParams{
		Modifications: []*FileChange{f},
		FilesChanged:  3,
		Insertions:    1,
		Deletions:     99,
	})
	t.Require.NoError(err)

	t.Equal(3, c.FilesChanged())
	t.Equal(100, c.TotalChanges())
}

func (g *ChangeSetTests) RejectsInvalidFields(t *testgroup.T) {
	_, err := NewChangeSet(ChangeSetParams{
		Modifications: []*FileChange{nil},
		FilesChanged:  -1,
		Insertions:    -1,
		Deletions:     -1,
		AffectedPaths: []PathPair{{"a", ""}, {" ", ""}},
	})

	verr := requireValidationError(t.T, err)
	t.Equal([]string{"modifications[0]", "files_changed_count", "insertions_count", "deletions_count", "affected_paths[1]"}, verr.Fields())
	t.ErrorIs(err, ErrNegative)
	t.ErrorIs(err, ErrPathPresence)
	t.ErrorIs(err, ErrMissing)
}

func (g *ChangeSetTests) AllAffectedPaths(t *testgroup.T) {
	c, err := NewChangeSet(ChangeSetParams{
		Modifications: []*FileChange{newTestFileChange(t.T, "", "added.py", Added, 1, 0)},
		AffectedPaths: []PathPair{
			{"", "added.py"},
			{"deleted.py", ""},
			{"old.py", "new.py"},
			{"file.py", "file.py"},
		},
	})
	t.Require.NoError(err)

	t.Equal([]string{"added.py", "deleted.py", "file.py", "new.py", "old.py"}, c.AllAffectedPaths())
}

func (g *ChangeSetTests) KindQueries(t *testgroup.T) {
	renamed := newTestFileChange(t.T, "a", "b", Renamed, 0, 0)
	copied := newTestFileChange(t.T, "c", "d", Copied, 0, 0)
	modified := newTestFileChange(t.T, "e", "e", Modified, 1, 1)
	renamed2 := newTestFileChange(t.T, "f", "g", Renamed, 2, 0)

	c := newTestChangeSet(t.T, renamed, copied, modified, renamed2)

	kinds := c.ModificationKinds()
	t.Equal(3, kinds.Size())
	t.True(kinds.Contains(Renamed))
	t.True(kinds.Contains(Copied))
	t.True(kinds.Contains(Modified))
	t.False(kinds.Contains(Added))

	t.Equal([]*FileChange{renamed, renamed2}, c.RenamedFiles())
	t.Equal([]*FileChange{copied}, c.CopiedFiles())
}

func (g *ChangeSetTests) SummarizeChanges(t *testgroup.T) {
	added := newTestFileChange(t.T, "", "new.go", Added, 10, 0)
	renamed := newTestFileChange(t.T, "old.go", "moved.go", Renamed, 2, 3)

	p := SummarizeChanges([]*FileChange{added, renamed})

	t.Equal(2, p.FilesChanged)
	t.Equal(12, p.Insertions)
	t.Equal(3, p.Deletions)
	t.Equal([]PathPair{{"", "new.go"}, {"old.go", "moved.go"}}, p.AffectedPaths)
}

func TestChangeSetString(t *testing.T) {
	t.Parallel()

	build := func(files, ins, del int) string {
		c, err := NewChangeSet(ChangeSetParams{
			Modifications: []*FileChange{newTestFileChange(t, "", "file.py", Added, ins, del)},
			FilesChanged:  files,
			Insertions:    ins,
			Deletions:     del,
		})
		require.NoError(t, err)
		return c.String()
	}

	assert.Equal(t, "1 file changed, 10 insertions(+), 5 deletions(-)", build(1, 10, 5))
	assert.Equal(t, "2 files changed, 25 insertions(+), 5 deletions(-)", build(2, 25, 5))
	assert.Equal(t, "1 file changed, 5 insertions(+)", build(1, 5, 0))
	assert.Equal(t, "1 file changed, 3 deletions(-)", build(1, 0, 3))
	assert.Equal(t, "1 file changed, 1 insertions(+)", build(1, 1, 0))
	assert.Equal(t, "1 file changed, no line changes", build(1, 0, 0))
	assert.Equal(t, "1 file changed, 50000 insertions(+), 25000 deletions(-)", build(1, 50000, 25000))
}

func TestChangeSetGoString(t *testing.T) {
	t.Parallel()

	c := newTestChangeSet(t, newTestFileChange(t, "", "file.py", Added, 10, 0))

	assert.Equal(t, "ChangeSet(files_changed=1, insertions=10, deletions=0, modifications_count=1, affected_paths_count=1)", c.GoString())
}
