package filters

import (
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
)

type Options struct {
	ChangeTypes   []string
	Paths         []string
	ExcludePaths  []string
	Authors       []string
	After         *time.Time
	Before        *time.Time
	OnlyAnnotated bool
	Rule          string
}

type Filter interface {
	Match(c *model.ClassifiedCommit) bool
}

type CommitFilter func(c *model.ClassifiedCommit) bool

func (f CommitFilter) Match(c *model.ClassifiedCommit) bool {
	return f(c)
}

// New combines every configured option. A commit must satisfy all of them.
func New(opts Options) (Filter, error) {
	var filters []CommitFilter

	if len(opts.ChangeTypes) > 0 {
		types := set.New[model.ChangeType](len(opts.ChangeTypes))
		for _, name := range opts.ChangeTypes {
			ct, err := model.ParseChangeType(name)
			if err != nil {
				return nil, err
			}
			types.Insert(ct)
		}

		filters = append(filters, func(c *model.ClassifiedCommit) bool {
			return types.Contains(c.ChangeType())
		})
	}

	if len(opts.Paths) > 0 || len(opts.ExcludePaths) > 0 {
		f, err := newPathsFilter(opts.Paths, opts.ExcludePaths)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	if len(opts.Authors) > 0 {
		matchers := make([]func(string) bool, 0, len(opts.Authors))
		for _, a := range opts.Authors {
			m, err := ParseStringFilter(a)
			if err != nil {
				return nil, err
			}
			matchers = append(matchers, m)
		}

		filters = append(filters, func(c *model.ClassifiedCommit) bool {
			author := c.Commit().Metadata().Author()
			return lo.SomeBy(matchers, func(m func(string) bool) bool {
				return m(author.Name()) || m(author.Email())
			})
		})
	}

	if opts.After != nil {
		after := *opts.After
		filters = append(filters, func(c *model.ClassifiedCommit) bool {
			return !committedAt(c).Before(after)
		})
	}

	if opts.Before != nil {
		before := *opts.Before
		filters = append(filters, func(c *model.ClassifiedCommit) bool {
			return committedAt(c).Before(before)
		})
	}

	if opts.OnlyAnnotated {
		filters = append(filters, func(c *model.ClassifiedCommit) bool {
			return c.Commit().HasAISummary()
		})
	}

	if opts.Rule != "" {
		f, err := ParseRule(opts.Rule)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	return CommitFilter(func(c *model.ClassifiedCommit) bool {
		for _, f := range filters {
			if !f(c) {
				return false
			}
		}
		return true
	}), nil
}

func committedAt(c *model.ClassifiedCommit) time.Time {
	return c.Commit().Metadata().Committer().Timestamp()
}

// newPathsFilter keeps commits that touch at least one path that is not
// excluded and, when include patterns exist, is included.
func newPathsFilter(include []string, exclude []string) (CommitFilter, error) {
	parse := func(patterns []string) ([]func(string) bool, error) {
		result := make([]func(string) bool, 0, len(patterns))
		for _, p := range patterns {
			m, err := ParsePathFilter(p)
			if err != nil {
				return nil, err
			}
			result = append(result, m)
		}
		return result, nil
	}

	includes, err := parse(include)
	if err != nil {
		return nil, err
	}

	excludes, err := parse(exclude)
	if err != nil {
		return nil, err
	}

	usage := Exclude
	if len(includes) > 0 {
		usage = Include
	}

	usageOf := func(path string) UsageType {
		matches := func(m func(string) bool) bool { return m(path) }

		switch {
		case lo.SomeBy(excludes, matches):
			return Exclude
		case lo.SomeBy(includes, matches):
			return Include
		default:
			return DontCare
		}
	}

	return func(c *model.ClassifiedCommit) bool {
		paths := c.Commit().AffectedPaths()
		if len(paths) == 0 {
			return usage == Exclude
		}

		return lo.SomeBy(paths, func(path string) bool {
			return usageOf(path).DecideFor(usage)
		})
	}, nil
}

func Apply(commits []*model.ClassifiedCommit, f Filter) []*model.ClassifiedCommit {
	return lo.Filter(commits, func(c *model.ClassifiedCommit, _ int) bool {
		return f.Match(c)
	})
}
