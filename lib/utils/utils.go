package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/constraints"
)

func Min[T constraints.Ordered](a T, bs ...T) T {
	result := a
	for _, b := range bs {
		if result > b {
			result = b
		}
	}
	return result
}

func Max[T constraints.Ordered](a T, bs ...T) T {
	result := a
	for _, b := range bs {
		if result < b {
			result = b
		}
	}
	return result
}

func Coalesce[T comparable](vs ...T) T {
	var def T

	for _, v := range vs {
		if v != def {
			return v
		}
	}

	return def
}

func IsTrue(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v != "false" && v != "f" && v != "no" && v != "n" && v != "0" && v != ""
}

// SplitList splits a comma separated config value, dropping blank entries.
func SplitList(v string) []string {
	return lo.Compact(lo.Map(strings.Split(v, ","), func(i string, _ int) string {
		return strings.TrimSpace(i)
	}))
}

func PathAbs(paths ...string) (string, error) {
	path := filepath.Join(paths...)

	if strings.HasPrefix(filepath.ToSlash(path), "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return path, nil
}

func FileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil

	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil

	} else {
		return false, err
	}
}
