package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ModificationKind is the status letter Git uses for a file in a diff.
type ModificationKind string

const (
	Added       ModificationKind = "A"
	Copied      ModificationKind = "C"
	Deleted     ModificationKind = "D"
	Modified    ModificationKind = "M"
	Renamed     ModificationKind = "R"
	TypeChanged ModificationKind = "T"
	Unmerged    ModificationKind = "U"
	Unknown     ModificationKind = "X"
	Broken      ModificationKind = "B"
)

var ModificationKinds = []ModificationKind{
	Added, Copied, Deleted, Modified, Renamed, TypeChanged, Unmerged, Unknown, Broken,
}

func ParseModificationKind(s string) (ModificationKind, error) {
	k := ModificationKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", errors.Wrapf(ErrUnknownModificationKind, "'%v' is not one of %v", s, modificationKindNames())
	}
	return k, nil
}

func (k ModificationKind) IsValid() bool {
	return lo.Contains(ModificationKinds, k)
}

func (k ModificationKind) String() string {
	return string(k)
}

func modificationKindNames() string {
	return strings.Join(lo.Map(ModificationKinds, func(k ModificationKind, _ int) string { return string(k) }), ", ")
}

type FileChangeParams struct {
	PathBefore string
	PathAfter  string
	Kind       ModificationKind
	Insertions int
	Deletions  int
	Patch      string
}

// FileChange is the record of one file in a diff.
type FileChange struct {
	pathBefore string
	pathAfter  string
	kind       ModificationKind
	insertions int
	deletions  int
	patch      string
}

func NewFileChange(p FileChangeParams) (*FileChange, error) {
	v := newValidator("FileChange")

	before, errBefore := NormalizePath(p.PathBefore)
	v.field("path_before", errBefore)

	after, errAfter := NormalizePath(p.PathAfter)
	v.field("path_after", errAfter)

	kindValid := p.Kind.IsValid()
	if !kindValid {
		v.add("kind", TypeMismatch,
			errors.Wrapf(ErrUnknownModificationKind, "'%v' is not one of %v", p.Kind, modificationKindNames()))
	}

	v.field("insertions", nonNegative(p.Insertions))
	v.field("deletions", nonNegative(p.Deletions))

	if kindValid && errBefore == nil && errAfter == nil {
		v.crossField("kind", checkPathPresence(p.Kind, before, after))
	}

	if v.failed() {
		return nil, v.err()
	}

	return &FileChange{
		pathBefore: before,
		pathAfter:  after,
		kind:       p.Kind,
		insertions: p.Insertions,
		deletions:  p.Deletions,
		patch:      p.Patch,
	}, nil
}

func checkPathPresence(kind ModificationKind, before, after string) error {
	switch kind {
	case Added:
		if before != "" {
			return errors.Wrap(ErrPathPresence, "added files cannot have path_before")
		}
		if after == "" {
			return errors.Wrap(ErrPathPresence, "added files must have path_after")
		}
	case Deleted:
		if before == "" {
			return errors.Wrap(ErrPathPresence, "deleted files must have path_before")
		}
		if after != "" {
			return errors.Wrap(ErrPathPresence, "deleted files cannot have path_after")
		}
	case Modified:
		if before == "" || after == "" {
			return errors.Wrap(ErrPathPresence, "modified files must have both path_before and path_after")
		}
	case Renamed, Copied:
		if before == "" || after == "" {
			return errors.Wrapf(ErrPathPresence, "%v must have both path_before and path_after", kindNoun(kind))
		}
		if before == after {
			return errors.Wrapf(ErrPathPresence, "%v must have different path_before and path_after", kindNoun(kind))
		}
	case Unmerged:
		if after == "" {
			return errors.Wrap(ErrPathPresence, "unmerged files must have path_after")
		}
	}

	if before == "" && after == "" {
		return errors.Wrap(ErrPathPresence, "at least one of path_before and path_after is required")
	}

	return nil
}

func kindNoun(kind ModificationKind) string {
	if kind == Renamed {
		return "renames"
	}
	return "copies"
}

func (f *FileChange) PathBefore() (string, bool) {
	return f.pathBefore, f.pathBefore != ""
}

func (f *FileChange) PathAfter() (string, bool) {
	return f.pathAfter, f.pathAfter != ""
}

func (f *FileChange) Kind() ModificationKind {
	return f.kind
}

func (f *FileChange) Insertions() int {
	return f.insertions
}

func (f *FileChange) Deletions() int {
	return f.deletions
}

func (f *FileChange) Patch() (string, bool) {
	return f.patch, f.patch != ""
}

func (f *FileChange) HasPatch() bool {
	return f.patch != ""
}

// EffectivePath returns the path after the change, or the path before it for
// deletions. Construction guarantees one of them exists.
func (f *FileChange) EffectivePath() string {
	switch {
	case f.pathAfter != "":
		return f.pathAfter
	case f.pathBefore != "":
		return f.pathBefore
	default:
		panic(ErrNoPathAvailable)
	}
}

func (f *FileChange) IsRenameOrCopy() bool {
	return f.kind == Renamed || f.kind == Copied
}

// Paths returns the present paths, before first, without repetitions.
func (f *FileChange) Paths() []string {
	return lo.Uniq(lo.Compact([]string{f.pathBefore, f.pathAfter}))
}

func (f *FileChange) TotalChanges() int {
	return f.insertions + f.deletions
}

func (f *FileChange) String() string {
	path := f.EffectivePath()
	if f.IsRenameOrCopy() {
		path = fmt.Sprintf("%v → %v", f.pathBefore, f.pathAfter)
	}

	var stats string
	switch {
	case f.insertions > 0 && f.deletions > 0:
		stats = fmt.Sprintf(" (+%v/-%v)", f.insertions, f.deletions)
	case f.insertions > 0:
		stats = fmt.Sprintf(" (+%v)", f.insertions)
	case f.deletions > 0:
		stats = fmt.Sprintf(" (-%v)", f.deletions)
	}

	return fmt.Sprintf("%v %v%v", f.kind, path, stats)
}

func (f *FileChange) GoString() string {
	patch := "None"
	if f.HasPatch() {
		patch = "<patch>"
	}

	return fmt.Sprintf("FileChange(kind=%q, path_before=%v, path_after=%v, insertions=%v, deletions=%v, patch=%v)",
		f.kind, optional(f.pathBefore), optional(f.pathAfter), f.insertions, f.deletions, patch)
}
