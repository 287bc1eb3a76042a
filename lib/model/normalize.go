package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinSHALength  = 4
	MaxSHALength  = 64
	MaxPathLength = 4096
)

// NormalizeSHA trims and lowercases a Git object hash and checks it has
// between MinSHALength and MaxSHALength hex digits.
func NormalizeSHA(sha string) (string, error) {
	sha = strings.ToLower(strings.TrimSpace(sha))

	if len(sha) < MinSHALength || len(sha) > MaxSHALength {
		return "", errors.Wrapf(ErrInvalidSHA, "SHA must be %v-%v characters long, got %v",
			MinSHALength, MaxSHALength, utf8.RuneCountInString(sha))
	}

	for _, c := range sha {
		if !isHex(c) {
			return "", errors.Wrap(ErrInvalidSHA, "SHA must contain only hexadecimal characters")
		}
	}

	return sha, nil
}

// IsHexString reports whether s is a non-empty lowercase hexadecimal string,
// such as a SHA or a prefix of one.
func IsHexString(s string) bool {
	return s != "" && strings.IndexFunc(s, func(c rune) bool { return !isHex(c) }) < 0
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}

func normalizeOptionalSHA(sha string) (string, error) {
	if strings.TrimSpace(sha) == "" {
		return "", nil
	}

	return NormalizeSHA(sha)
}

func normalizeSignature(sig string) (string, error) {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return "", nil
	}

	if !strings.HasPrefix(sig, "-----BEGIN") && !strings.HasPrefix(sig, "gpgsig ") {
		return "", ErrInvalidSignatureFormat
	}

	return sig, nil
}

// NormalizePath cleans a repository relative path. An empty result means the
// path is absent.
func NormalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	if strings.ContainsRune(path, 0) {
		return "", errors.Wrap(ErrInvalidPath, "path cannot contain null bytes")
	}

	if utf8.RuneCountInString(path) > MaxPathLength {
		return "", errors.Wrapf(ErrInvalidPath, "path cannot be longer than %v characters", MaxPathLength)
	}

	return strings.ReplaceAll(path, `\`, "/"), nil
}

// IsValidBranchName reports whether name is accepted as a source or target
// branch.
func IsValidBranchName(name string) bool {
	_, err := normalizeBranchName(name)
	return err == nil
}

func normalizeBranchName(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return "", ErrEmpty
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return "", errors.Wrapf(ErrInvalidBranchName, "'%v' contains whitespace", name)
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return "", errors.Wrapf(ErrInvalidBranchName, "'%v' cannot start or end with '/'", name)
	case strings.Contains(name, "//"):
		return "", errors.Wrapf(ErrInvalidBranchName, "'%v' cannot contain '//'", name)
	}

	return name, nil
}

func normalizeText(text string, maxLength int) (string, error) {
	text = strings.TrimSpace(text)

	switch {
	case text == "":
		return "", ErrEmpty
	case maxLength > 0 && utf8.RuneCountInString(text) > maxLength:
		return "", errors.Wrapf(ErrTooLong, "maximum is %v characters", maxLength)
	}

	return text, nil
}

func normalizeOptionalText(text string) string {
	return strings.TrimSpace(text)
}

// A Caser keeps state, so each call gets its own.
func lowercase(s string) string {
	return cases.Lower(language.Und).String(s)
}

func nonNegative(v int) error {
	if v < 0 {
		return ErrNegative
	}
	return nil
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
