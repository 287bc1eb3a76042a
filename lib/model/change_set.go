package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gertd/go-pluralize"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PathPair is one (before, after) entry of a diff. Empty means absent.
type PathPair struct {
	Before string
	After  string
}

type ChangeSetParams struct {
	Modifications []*FileChange
	FilesChanged  int
	Insertions    int
	Deletions     int
	AffectedPaths []PathPair
}

// ChangeSet is a diff: the file records plus the totals reported for them.
// The totals are trusted as given.
type ChangeSet struct {
	modifications []*FileChange
	filesChanged  int
	insertions    int
	deletions     int
	affectedPaths []PathPair
}

// SummarizeChanges computes the totals and affected paths of mods.
func SummarizeChanges(mods []*FileChange) ChangeSetParams {
	result := ChangeSetParams{
		Modifications: mods,
		FilesChanged:  len(mods),
		AffectedPaths: make([]PathPair, 0, len(mods)),
	}

	for _, m := range mods {
		result.Insertions += m.insertions
		result.Deletions += m.deletions
		result.AffectedPaths = append(result.AffectedPaths, PathPair{m.pathBefore, m.pathAfter})
	}

	return result
}

func NewChangeSet(p ChangeSetParams) (*ChangeSet, error) {
	v := newValidator("ChangeSet")

	for i, m := range p.Modifications {
		if m == nil {
			v.field(fmt.Sprintf("modifications[%v]", i), ErrMissing)
		}
	}

	v.field("files_changed_count", nonNegative(p.FilesChanged))
	v.field("insertions_count", nonNegative(p.Insertions))
	v.field("deletions_count", nonNegative(p.Deletions))

	paths := make([]PathPair, 0, len(p.AffectedPaths))
	for i, pair := range p.AffectedPaths {
		field := fmt.Sprintf("affected_paths[%v]", i)

		before, err := NormalizePath(pair.Before)
		v.field(field, err)

		after, err := NormalizePath(pair.After)
		v.field(field, err)

		if before == "" && after == "" {
			v.field(field, errors.Wrap(ErrPathPresence, "at least one path is required"))
			continue
		}

		paths = append(paths, PathPair{before, after})
	}

	if len(p.Modifications) == 0 && (p.FilesChanged > 0 || p.Insertions > 0 || p.Deletions > 0) {
		v.crossField("modifications", ErrCountsWithoutModifications)
	}

	if v.failed() {
		return nil, v.err()
	}

	return &ChangeSet{
		modifications: append([]*FileChange(nil), p.Modifications...),
		filesChanged:  p.FilesChanged,
		insertions:    p.Insertions,
		deletions:     p.Deletions,
		affectedPaths: paths,
	}, nil
}

func (c *ChangeSet) Modifications() []*FileChange {
	return append([]*FileChange(nil), c.modifications...)
}

func (c *ChangeSet) FilesChanged() int {
	return c.filesChanged
}

func (c *ChangeSet) Insertions() int {
	return c.insertions
}

func (c *ChangeSet) Deletions() int {
	return c.deletions
}

func (c *ChangeSet) AffectedPaths() []PathPair {
	return append([]PathPair(nil), c.affectedPaths...)
}

func (c *ChangeSet) IsEmpty() bool {
	return len(c.modifications) == 0 && c.filesChanged == 0 && c.insertions == 0 && c.deletions == 0
}

func (c *ChangeSet) TotalChanges() int {
	return c.insertions + c.deletions
}

func (c *ChangeSet) ModificationKinds() *set.Set[ModificationKind] {
	result := set.New[ModificationKind](len(c.modifications))
	for _, m := range c.modifications {
		result.Insert(m.kind)
	}
	return result
}

func (c *ChangeSet) RenamedFiles() []*FileChange {
	return c.withKind(Renamed)
}

func (c *ChangeSet) CopiedFiles() []*FileChange {
	return c.withKind(Copied)
}

func (c *ChangeSet) withKind(kind ModificationKind) []*FileChange {
	return lo.Filter(c.modifications, func(m *FileChange, _ int) bool { return m.kind == kind })
}

// AllAffectedPaths returns every present path, sorted and without repetitions.
func (c *ChangeSet) AllAffectedPaths() []string {
	paths := set.New[string](len(c.affectedPaths) * 2)
	for _, pair := range c.affectedPaths {
		if pair.Before != "" {
			paths.Insert(pair.Before)
		}
		if pair.After != "" {
			paths.Insert(pair.After)
		}
	}

	result := paths.Slice()
	sort.Strings(result)
	return result
}

var plurals = pluralize.NewClient()

func (c *ChangeSet) String() string {
	if c.IsEmpty() {
		return "Empty diff"
	}

	var sb strings.Builder
	sb.WriteString(plurals.Pluralize("file", c.filesChanged, true))
	sb.WriteString(" changed")

	if c.insertions == 0 && c.deletions == 0 {
		sb.WriteString(", no line changes")
		return sb.String()
	}

	if c.insertions > 0 {
		sb.WriteString(fmt.Sprintf(", %v insertions(+)", c.insertions))
	}
	if c.deletions > 0 {
		sb.WriteString(fmt.Sprintf(", %v deletions(-)", c.deletions))
	}

	return sb.String()
}

func (c *ChangeSet) GoString() string {
	return fmt.Sprintf("ChangeSet(files_changed=%v, insertions=%v, deletions=%v, modifications_count=%v, affected_paths_count=%v)",
		c.filesChanged, c.insertions, c.deletions, len(c.modifications), len(c.affectedPaths))
}
