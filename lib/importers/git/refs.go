package git

import (
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"
)

// refIndex maps commit hashes to the local branches and tags that point at them.
type refIndex struct {
	branches map[plumbing.Hash][]string
	tags     map[plumbing.Hash][]string
}

func loadRefs(gitRepo *git.Repository) (*refIndex, error) {
	result := &refIndex{
		branches: map[plumbing.Hash][]string{},
		tags:     map[plumbing.Hash][]string{},
	}

	branches, err := gitRepo.Branches()
	if err != nil {
		return nil, errors.Wrap(err, "error listing branches")
	}

	err = branches.ForEach(func(ref *plumbing.Reference) error {
		result.branches[ref.Hash()] = append(result.branches[ref.Hash()], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}

	tags, err := gitRepo.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "error listing tags")
	}

	err = tags.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()

		tag, err := gitRepo.TagObject(hash)
		switch {
		case err == nil:
			target, err := tag.Commit()
			if errors.Is(err, object.ErrUnsupportedObject) {
				// Tags of trees or blobs are not part of the history.
				return nil
			} else if err != nil {
				return errors.Wrapf(err, "error peeling tag %v", ref.Name().Short())
			}
			hash = target.Hash

		case errors.Is(err, plumbing.ErrObjectNotFound):
			// Lightweight tag

		default:
			return err
		}

		result.tags[hash] = append(result.tags[hash], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, names := range result.branches {
		sort.Strings(names)
	}
	for _, names := range result.tags {
		sort.Strings(names)
	}

	return result, nil
}

func (r *refIndex) branchesAt(hash plumbing.Hash) []string {
	return r.branches[hash]
}

func (r *refIndex) tagsAt(hash plumbing.Hash) []string {
	return r.tags[hash]
}
