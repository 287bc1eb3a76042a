package filters

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pescuma/relnotes/lib/model"
)

var errEmptyRule = errors.New("empty rule")

// ParseRule parses a commit filter expression. Clauses are joined with "|"
// (or) and "&" (and), "!" negates, and each clause is one of
// type:<change type>, author:<text>, path:<glob>, sha:<prefix>, branch:<name>,
// tag:<name>, or a text matched against the summary.
func ParseRule(rule string) (CommitFilter, error) {
	rule = strings.TrimSpace(rule)

	switch {
	case rule == "":
		return nil, errEmptyRule

	case strings.Contains(rule, "|"):
		clauses, err := parseClauses(strings.Split(rule, "|"))
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			for _, f := range clauses {
				if f(c) {
					return true
				}
			}
			return false
		}, nil

	case strings.Contains(rule, "&"):
		clauses, err := parseClauses(strings.Split(rule, "&"))
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			for _, f := range clauses {
				if !f(c) {
					return false
				}
			}
			return true
		}, nil

	case strings.HasPrefix(rule, "!"):
		f, err := ParseRule(rule[1:])
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			return !f(c)
		}, nil

	case strings.HasPrefix(rule, "type:"):
		ct, err := model.ParseChangeType(rule[5:])
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			return c.ChangeType() == ct
		}, nil

	case strings.HasPrefix(rule, "author:"):
		f, err := ParseStringFilter(rule[7:])
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			author := c.Commit().Metadata().Author()
			return f(author.Name()) || f(author.Email())
		}, nil

	case strings.HasPrefix(rule, "path:"):
		f, err := ParsePathFilter(rule[5:])
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			for _, p := range c.Commit().AffectedPaths() {
				if f(p) {
					return true
				}
			}
			return false
		}, nil

	case strings.HasPrefix(rule, "sha:"):
		prefix := strings.ToLower(strings.TrimSpace(rule[4:]))

		return func(c *model.ClassifiedCommit) bool {
			return strings.HasPrefix(c.SHA(), prefix)
		}, nil

	case strings.HasPrefix(rule, "branch:"):
		return refFilter(rule[7:], func(c *model.ClassifiedCommit) []string {
			return append(c.Commit().Branches(), c.Classification().TargetBranch())
		})

	case strings.HasPrefix(rule, "tag:"):
		return refFilter(rule[4:], func(c *model.ClassifiedCommit) []string {
			return c.Commit().Tags()
		})

	default:
		f, err := ParseStringFilter(rule)
		if err != nil {
			return nil, err
		}

		return func(c *model.ClassifiedCommit) bool {
			return f(c.Commit().Summary())
		}, nil
	}
}

func refFilter(rule string, refs func(c *model.ClassifiedCommit) []string) (CommitFilter, error) {
	f, err := ParseStringFilter(rule)
	if err != nil {
		return nil, err
	}

	return func(c *model.ClassifiedCommit) bool {
		for _, r := range refs(c) {
			if f(r) {
				return true
			}
		}
		return false
	}, nil
}

func parseClauses(split []string) ([]CommitFilter, error) {
	result := make([]CommitFilter, 0, len(split))

	for _, fi := range split {
		f, err := ParseRule(fi)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid clause '%v'", strings.TrimSpace(fi))
		}

		result = append(result, f)
	}

	return result, nil
}
