package filters

import (
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/model/modeltest"
)

func TestFilters(t *testing.T) {
	testgroup.RunInParallel(t, &FiltersTests{})
}

type FiltersTests struct{}

func fixtures(t *testing.T) []*model.ClassifiedCommit {
	return []*model.ClassifiedCommit{
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:     "aaaa0001",
			Author:  "Alice Smith",
			Email:   "alice@example.com",
			When:    modeltest.Now,
			Summary: "Fix login bug",
			Files:   []*model.FileChange{modeltest.File(t, "src/login.go", "src/login.go", model.Modified, 3, 1)},
		}),
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:            "bbbb0002",
			Author:         "Bob Jones",
			Email:          "bob@corp.io",
			When:           modeltest.Now.Add(24 * time.Hour),
			Summary:        "Merge feature",
			Parents:        []string{"aaaa0001", "cccc0003"},
			ChangeType:     model.ChangeMerge,
			SourceBranches: []string{"feature/x"},
			Tags:           []string{"v2.0.0"},
			AISummary:      "Adds the x feature.",
			Files: []*model.FileChange{
				modeltest.File(t, "", "docs/x.md", model.Added, 10, 0),
				modeltest.File(t, "", "src/x.go", model.Added, 20, 0),
			},
		}),
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:     "cccc0003",
			Author:  "Alice Smith",
			Email:   "alice@example.com",
			When:    modeltest.Now.Add(48 * time.Hour),
			Summary: "Update docs",
			Files:   []*model.FileChange{modeltest.File(t, "docs/readme.md", "docs/readme.md", model.Modified, 1, 1)},
		}),
	}
}

func shas(commits []*model.ClassifiedCommit) []string {
	return lo.Map(commits, func(c *model.ClassifiedCommit, _ int) string { return c.SHA() })
}

func (g *FiltersTests) apply(t *testgroup.T, opts Options) []string {
	f, err := New(opts)
	t.Require.NoError(err)
	return shas(Apply(fixtures(t.T), f))
}

func (g *FiltersTests) NoOptionsMatchesAll(t *testgroup.T) {
	t.Equal([]string{"aaaa0001", "bbbb0002", "cccc0003"}, g.apply(t, Options{}))
}

func (g *FiltersTests) ChangeTypes(t *testgroup.T) {
	t.Equal([]string{"bbbb0002"}, g.apply(t, Options{ChangeTypes: []string{"merge"}}))

	_, err := New(Options{ChangeTypes: []string{"fast-forward"}})
	t.ErrorIs(err, model.ErrUnknownChangeType)
}

func (g *FiltersTests) Paths(t *testgroup.T) {
	t.Equal([]string{"aaaa0001", "bbbb0002"}, g.apply(t, Options{Paths: []string{"src/**"}}))
	t.Equal([]string{"aaaa0001", "bbbb0002"}, g.apply(t, Options{ExcludePaths: []string{"docs/**"}}))
	t.Equal([]string{"aaaa0001"}, g.apply(t, Options{Paths: []string{"src/**"}, ExcludePaths: []string{"src/x.go"}}))

	_, err := New(Options{Paths: []string{"src/[a"}})
	t.Require.Error(err)
}

func (g *FiltersTests) Authors(t *testgroup.T) {
	t.Equal([]string{"aaaa0001", "cccc0003"}, g.apply(t, Options{Authors: []string{"ALICE"}}))
	t.Equal([]string{"bbbb0002"}, g.apply(t, Options{Authors: []string{"corp.io"}}))
	t.Equal([]string{"bbbb0002"}, g.apply(t, Options{Authors: []string{"re:^bob "}}))
}

func (g *FiltersTests) Dates(t *testgroup.T) {
	after := modeltest.Now.Add(24 * time.Hour)
	before := modeltest.Now.Add(48 * time.Hour)

	t.Equal([]string{"bbbb0002", "cccc0003"}, g.apply(t, Options{After: &after}))
	t.Equal([]string{"aaaa0001", "bbbb0002"}, g.apply(t, Options{Before: &before}))
	t.Equal([]string{"bbbb0002"}, g.apply(t, Options{After: &after, Before: &before}))
}

func (g *FiltersTests) OnlyAnnotated(t *testgroup.T) {
	t.Equal([]string{"bbbb0002"}, g.apply(t, Options{OnlyAnnotated: true}))
}

func (g *FiltersTests) Rules(t *testgroup.T) {
	cases := map[string][]string{
		"type:merge":                  {"bbbb0002"},
		"!type:merge":                 {"aaaa0001", "cccc0003"},
		"author:alice & path:docs/**": {"cccc0003"},
		"sha:AAAA | tag:v2.*":         {"aaaa0001", "bbbb0002"},
		"branch:main & login":         {"aaaa0001"},
		"branch:feature":              {},
		"docs":                        {"cccc0003"},
	}

	for rule, want := range cases {
		got := g.apply(t, Options{Rule: rule})
		t.Equal(want, got, rule)
	}

	_, err := ParseRule("type:bogus")
	t.ErrorIs(err, model.ErrUnknownChangeType)

	_, err = ParseRule("a | ")
	t.ErrorIs(err, errEmptyRule)
}

func (g *FiltersTests) StringFilter(t *testgroup.T) {
	f, err := ParseStringFilter("*.example.*")
	t.Require.NoError(err)
	t.True(f("alice@mail.Example.com"))
	t.False(f("example"))

	f, err = ParseStringFilter("")
	t.Require.NoError(err)
	t.True(f("anything"))

	_, err = ParseStringFilter("re:(")
	t.Require.Error(err)
}
