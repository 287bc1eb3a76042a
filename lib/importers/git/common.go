package git

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/relnotes/lib/utils"
)

func findRootDirs(baseDirs []string) ([]string, error) {
	found := set.New[string](100)

	for _, baseDir := range baseDirs {
		baseDir, err := utils.PathAbs(baseDir)
		if err != nil {
			return nil, err
		}

		err = filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return nil

			case entry.Name() == ".git":
				rootDir, err := utils.PathAbs(filepath.Dir(path))
				if err != nil {
					return err
				}

				found.Insert(rootDir)
				return filepath.SkipDir

			case entry.IsDir() && strings.HasPrefix(entry.Name(), ".") && path != baseDir:
				return filepath.SkipDir
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	result := found.Slice()
	sort.Strings(result)
	return result, nil
}

func log(gitRepo *git.Repository, gitRevision plumbing.Hash) (object.CommitIter, error) {
	return gitRepo.Log(&git.LogOptions{
		From:  gitRevision,
		Order: git.LogOrderCommitterTime,
	})
}

// findBranchHash resolves the first of the comma separated candidates that
// exists, or HEAD when branch is empty. The returned name is the short name
// used as the target branch of the imported commits.
func findBranchHash(gitRepo *git.Repository, branch string) (string, plumbing.Hash, error) {
	if branch == "" {
		gitHead, err := gitRepo.Head()
		if err != nil {
			return "", plumbing.ZeroHash, errors.Wrap(err, "error resolving HEAD")
		}

		if gitHead.Name().IsBranch() {
			return gitHead.Name().Short(), gitHead.Hash(), nil
		}

		return "HEAD", gitHead.Hash(), nil
	}

	for _, candidate := range utils.SplitList(branch) {
		revision, err := gitRepo.ResolveRevision(plumbing.Revision(candidate))
		if err == nil {
			return candidate, *revision, nil
		}
	}

	return "", plumbing.ZeroHash, errors.Errorf("no branch found with name: %v", branch)
}
