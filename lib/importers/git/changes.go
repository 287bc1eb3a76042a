package git

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
)

// computeChanges diffs a commit against its first parent, or against the
// empty tree for root commits.
func (i *HistoryImporter) computeChanges(ctx context.Context, gitCommit *object.Commit, opts *HistoryOptions) ([]*model.FileChange, error) {
	commitTree, err := gitCommit.Tree()
	if err != nil {
		return nil, err
	}

	var parentTree *object.Tree
	if gitCommit.NumParents() > 0 {
		parent, err := gitCommit.Parent(0)
		if err != nil {
			return nil, err
		}

		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, commitTree, &object.DiffTreeOptions{
		DetectRenames:    true,
		RenameScore:      60,
		RenameLimit:      0,
		OnlyExactRenames: false,
	})
	if err != nil {
		return nil, err
	}

	var copies map[plumbing.Hash]string
	if parentTree != nil && lo.SomeBy(changes, isInsert) {
		copies, err = blobPaths(parentTree)
		if err != nil {
			return nil, err
		}
	}

	result := make([]*model.FileChange, 0, len(changes))
	for _, change := range changes {
		params, err := i.toFileChange(ctx, change, copies, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "error computing change of %v", change.String())
		}
		if params == nil {
			continue
		}

		fc, err := model.NewFileChange(*params)
		if err != nil {
			return nil, err
		}

		result = append(result, fc)
	}

	return result, nil
}

func isInsert(change *object.Change) bool {
	action, err := change.Action()
	return err == nil && action == merkletrie.Insert
}

var emptyBlob = plumbing.ComputeHash(plumbing.BlobObject, nil)

// blobPaths maps each non empty blob of the tree to the first path that holds it.
func blobPaths(tree *object.Tree) (map[plumbing.Hash]string, error) {
	result := map[plumbing.Hash]string{}

	err := tree.Files().ForEach(func(f *object.File) error {
		if _, ok := result[f.Hash]; !ok && f.Hash != emptyBlob {
			result[f.Hash] = f.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (i *HistoryImporter) toFileChange(ctx context.Context, change *object.Change, copies map[plumbing.Hash]string, opts *HistoryOptions) (*model.FileChangeParams, error) {
	from := change.From
	to := change.To

	if from.TreeEntry.Mode == filemode.Submodule || to.TreeEntry.Mode == filemode.Submodule {
		return nil, nil
	}

	action, err := change.Action()
	if err != nil {
		return nil, err
	}

	result := &model.FileChangeParams{
		PathBefore: from.Name,
		PathAfter:  to.Name,
	}

	switch action {
	case merkletrie.Insert:
		result.Kind = model.Added

		if source, ok := copies[to.TreeEntry.Hash]; ok {
			result.Kind = model.Copied
			result.PathBefore = source
		}

	case merkletrie.Delete:
		result.Kind = model.Deleted

	case merkletrie.Modify:
		switch {
		case from.Name != to.Name:
			result.Kind = model.Renamed
		case (from.TreeEntry.Mode == filemode.Symlink) != (to.TreeEntry.Mode == filemode.Symlink):
			result.Kind = model.TypeChanged
		default:
			result.Kind = model.Modified
		}

	default:
		result.Kind = model.Unknown
	}

	if opts.isExcluded(result.PathAfter) || (result.PathAfter == "" && opts.isExcluded(result.PathBefore)) {
		return nil, nil
	}

	// Exact copies have no line changes relative to their source.
	if result.Kind == model.Copied {
		return result, nil
	}

	patch, err := change.PatchContext(ctx)
	if err != nil {
		return nil, err
	}

	for _, stat := range patch.Stats() {
		result.Insertions += stat.Addition
		result.Deletions += stat.Deletion
	}

	if opts.IncludePatches {
		text := patch.String()

		if opts.MaxPatchSize > 0 && int64(len(text)) > opts.MaxPatchSize {
			i.console.Printf("Skipping patch of %v: %v is bigger than %v\n",
				lo.Ternary(result.PathAfter != "", result.PathAfter, result.PathBefore),
				humanize.Bytes(uint64(len(text))), humanize.Bytes(uint64(opts.MaxPatchSize)))
		} else {
			result.Patch = text
		}
	}

	return result, nil
}

func (l *HistoryOptions) isExcluded(path string) bool {
	if path == "" {
		return false
	}

	if l.ignored != nil && l.ignored.MatchesPath(path) {
		return true
	}

	return lo.SomeBy(l.Exclude, func(pattern string) bool {
		matched, err := doublestar.Match(pattern, path)
		return err == nil && matched
	})
}
