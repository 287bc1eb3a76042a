package filters

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ParseStringFilter builds a case-insensitive matcher: "re:" prefixes a
// regular expression, "*" is a wildcard, anything else matches a substring.
func ParseStringFilter(rule string) (func(string) bool, error) {
	rule = strings.TrimSpace(rule)

	if rule == "" {
		return func(s string) bool {
			return true
		}, nil

	} else if strings.HasPrefix(rule, "re:") {
		re, err := regexp.Compile("(?i)" + strings.TrimPrefix(rule, "re:"))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid RE: %v", rule)
		}

		return re.MatchString, nil

	} else if strings.Contains(rule, "*") {
		re, err := regexp.Compile("(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(rule), `\*`, `.*`) + "$")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter: %v", rule)
		}

		return re.MatchString, nil

	} else {
		lower := strings.ToLower(rule)

		return func(s string) bool {
			return strings.Contains(strings.ToLower(s), lower)
		}, nil
	}
}

// ParsePathFilter builds a matcher for a doublestar glob.
func ParsePathFilter(pattern string) (func(string) bool, error) {
	pattern = strings.TrimSpace(pattern)

	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid path pattern: %v", pattern)
	}

	return func(path string) bool {
		ok, _ := doublestar.Match(pattern, path)
		return ok
	}, nil
}
