package orm

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/model/modeltest"
	"github.com/pescuma/relnotes/lib/storages"
)

func newTestStorage(t *testing.T) storages.Storage {
	s, err := NewGormStorage(WithSqliteInMemory(), consoles.NewWriterConsole(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStorage(t *testing.T) {
	testgroup.RunInParallel(t, &GormStorageTests{})
}

type GormStorageTests struct{}

func (g *GormStorageTests) WriteAndLoadCommits(t *testgroup.T) {
	s := newTestStorage(t.T)

	patched, err := model.NewFileChange(model.FileChangeParams{
		PathBefore: "old.go",
		PathAfter:  "new.go",
		Kind:       model.Renamed,
		Insertions: 2,
		Deletions:  1,
		Patch:      "@@ -1 +1,2 @@\n-a\n+b\n+c\n",
	})
	t.Require.NoError(err)

	first := modeltest.Commit(t.T, modeltest.CommitSpec{
		SHA:     "aaaa1111",
		When:    modeltest.Now,
		Summary: "Add feature",
		Tags:    []string{"v1.0.0"},
		Files:   []*model.FileChange{patched, modeltest.File(t.T, "", "README.md", model.Added, 3, 0)},
	})
	second := modeltest.Commit(t.T, modeltest.CommitSpec{
		SHA:            "bbbb2222",
		When:           modeltest.Now.Add(time.Hour),
		Parents:        []string{"aaaa1111", "cccc3333"},
		ChangeType:     model.ChangeMerge,
		SourceBranches: []string{"feature/x"},
		PullRequestID:  "42",
	})

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{first, second}))

	commits, err := s.LoadCommits()
	t.Require.NoError(err)
	t.Require.Len(commits, 2)

	t.Equal("bbbb2222", commits[0].SHA())
	t.Equal("aaaa1111", commits[1].SHA())

	merge := commits[0]
	t.Equal(model.ChangeMerge, merge.ChangeType())
	t.Equal([]string{"feature/x"}, merge.Classification().SourceBranches())
	pr, ok := merge.Classification().PullRequestID()
	t.True(ok)
	t.Equal("42", pr)
	t.True(merge.Commit().IsMergeCommit())

	loaded := commits[1].Commit()
	t.Equal("Add feature", loaded.Summary())
	t.Equal([]string{"v1.0.0"}, loaded.Tags())
	t.True(loaded.Metadata().Author().Timestamp().Equal(modeltest.Now))
	t.Equal(2, loaded.Diff().FilesChanged())
	t.Equal(5, loaded.Diff().Insertions())

	mods := loaded.Diff().Modifications()
	t.Require.Len(mods, 2)
	t.Equal(model.Renamed, mods[0].Kind())
	patch, ok := mods[0].Patch()
	t.True(ok)
	t.Equal("@@ -1 +1,2 @@\n-a\n+b\n+c\n", patch)
	t.False(mods[1].HasPatch())
}

func (g *GormStorageTests) LoadCommitByPrefix(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "abcd1111"}),
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "abcd2222"}),
	}))

	c, err := s.LoadCommit("ABCD1")
	t.Require.NoError(err)
	t.Equal("abcd1111", c.SHA())

	_, err = s.LoadCommit("abcd")
	t.ErrorIs(err, storages.ErrAmbiguous)

	_, err = s.LoadCommit("ffff")
	t.ErrorIs(err, storages.ErrNotFound)

	_, err = s.LoadCommit(" ")
	t.ErrorIs(err, storages.ErrNotFound)

	for _, pattern := range []string{"%", "_", "abcd%", "a_cd"} {
		_, err = s.LoadCommit(pattern)
		t.ErrorIs(err, storages.ErrNotFound, pattern)
	}
}

func (g *GormStorageTests) RewriteReplacesFiles(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "abcd1111", Files: []*model.FileChange{
			modeltest.File(t.T, "", "a.go", model.Added, 1, 0),
			modeltest.File(t.T, "", "b.go", model.Added, 1, 0),
		}}),
	}))
	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "abcd1111", Files: []*model.FileChange{
			modeltest.File(t.T, "a.go", "a.go", model.Modified, 1, 1),
		}}),
	}))

	c, err := s.LoadCommit("abcd1111")
	t.Require.NoError(err)
	t.Require.Len(c.Commit().Diff().Modifications(), 1)
	t.Equal(model.Modified, c.Commit().Diff().Modifications()[0].Kind())
}

func (g *GormStorageTests) WriteAISummary(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "abcd1111"}),
	}))

	commits, err := s.LoadCommits()
	t.Require.NoError(err)

	t.Require.NoError(s.WriteAISummary("abcd1111", "  Adds things.  "))

	summary, ok := commits[0].Commit().AISummary()
	t.True(ok)
	t.Equal("Adds things.", summary)

	c, err := s.LoadCommit("abcd111")
	t.Require.NoError(err)
	summary, ok = c.Commit().AISummary()
	t.True(ok)
	t.Equal("Adds things.", summary)

	t.Require.NoError(s.WriteAISummary("abcd1111", ""))
	c, err = s.LoadCommit("abcd111")
	t.Require.NoError(err)
	t.False(c.Commit().HasAISummary())

	t.ErrorIs(s.WriteAISummary("ffff0000", "x"), storages.ErrNotFound)
}

func (g *GormStorageTests) RewriteKeepsAISummary(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111"}),
	}))
	t.Require.NoError(s.WriteAISummary("aaaa1111", "Adds the feature"))

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111", Summary: "Add the feature"}),
	}))

	c, err := s.LoadCommit("aaaa1111")
	t.Require.NoError(err)
	t.Equal("Add the feature", c.Commit().Summary())
	summary, ok := c.Commit().AISummary()
	t.True(ok)
	t.Equal("Adds the feature", summary)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111", AISummary: "Replaced"}),
	}))

	c, err = s.LoadCommit("aaaa1111")
	t.Require.NoError(err)
	summary, _ = c.Commit().AISummary()
	t.Equal("Replaced", summary)
}

func (g *GormStorageTests) ReimportInNewSessionKeepsAISummary(t *testgroup.T) {
	file := filepath.Join(t.TempDir(), "relnotes.sqlite")

	open := func() storages.Storage {
		s, err := NewGormStorage(WithSqlite(file), consoles.NewWriterConsole(io.Discard))
		t.Require.NoError(err)
		return s
	}

	s := open()
	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111"}),
	}))
	t.Require.NoError(s.WriteAISummary("aaaa1111", "Adds the feature"))
	t.Require.NoError(s.Close())

	s = open()
	defer s.Close()

	rebuilt := modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111"})
	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{rebuilt}))

	summary, ok := rebuilt.Commit().AISummary()
	t.True(ok)
	t.Equal("Adds the feature", summary)

	commits, err := s.LoadCommits()
	t.Require.NoError(err)
	t.Require.Len(commits, 1)
	summary, _ = commits[0].Commit().AISummary()
	t.Equal("Adds the feature", summary)
}

func (g *GormStorageTests) CountChangeTypes(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/repo", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111"}),
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa2222"}),
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa3333", ChangeType: model.ChangeInitial}),
	}))

	counts, err := s.CountChangeTypes()
	t.Require.NoError(err)
	t.Equal(map[model.ChangeType]int{model.ChangeDirect: 2, model.ChangeInitial: 1}, counts)
}

func (g *GormStorageTests) CommitHashesByRepository(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteCommits("/a", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "aaaa1111"}),
	}))
	t.Require.NoError(s.WriteCommits("/b", []*model.ClassifiedCommit{
		modeltest.Commit(t.T, modeltest.CommitSpec{SHA: "bbbb1111"}),
	}))

	hashes, err := s.LoadCommitHashes("/a")
	t.Require.NoError(err)
	t.Equal(1, hashes.Size())
	t.True(hashes.Contains("aaaa1111"))
}

func (g *GormStorageTests) Repositories(t *testgroup.T) {
	s := newTestStorage(t.T)

	t.Require.NoError(s.WriteRepository(&storages.Repository{
		RootDir:    "/repo",
		Name:       "repo",
		Branch:     "main",
		LastImport: modeltest.Now,
	}))

	repos, err := s.LoadRepositories()
	t.Require.NoError(err)
	t.Require.Len(repos, 1)
	t.Equal("repo", repos[0].Name)
	t.Equal("main", repos[0].Branch)
	t.True(repos[0].LastImport.Equal(modeltest.Now))
}

func (g *GormStorageTests) Config(t *testgroup.T) {
	s := newTestStorage(t.T)

	config, err := s.LoadConfig()
	t.Require.NoError(err)
	t.Empty(*config)

	(*config)["server.port"] = "8080"
	(*config)["import.branch"] = "main"
	t.Require.NoError(s.WriteConfig())

	delete(*config, "import.branch")
	t.Require.NoError(s.WriteConfig())

	var rows []*sqlConfig
	t.Require.NoError(s.(*gormStorage).db.Find(&rows).Error)
	t.Require.Len(rows, 1)
	t.Equal("server.port", rows[0].Key)
	t.Equal("8080", rows[0].Value)
}
