package git

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/storages"
	"github.com/pescuma/relnotes/lib/utils"
)

const writeBatchSize = 500

type HistoryImporter struct {
	console consoles.Console
	storage storages.Storage

	abort error
}

type HistoryOptions struct {
	Branch         string
	Incremental    bool
	MaxCommits     *int
	After          *time.Time
	Before         *time.Time
	Exclude        []string
	IncludePatches bool
	MaxPatchSize   int64

	ignored *ignore.GitIgnore
}

// IgnoreFileName is a file in gitignore syntax, at the root of a repository,
// listing paths left out of the imported changes.
const IgnoreFileName = ".relnotesignore"

func NewHistoryImporter(console consoles.Console, storage storages.Storage) *HistoryImporter {
	return &HistoryImporter{
		console: console,
		storage: storage,
		abort:   errors.New("ABORT"),
	}
}

func (i *HistoryImporter) Import(ctx context.Context, dirs []string, opts *HistoryOptions) error {
	repos, err := i.storage.LoadRepositories()
	if err != nil {
		return err
	}

	reposByDir := lo.KeyBy(repos, func(r *storages.Repository) string { return r.RootDir })

	dirs, err = findRootDirs(dirs)
	if err != nil {
		return err
	}

	if len(dirs) == 0 {
		i.console.Printf("No git repositories found\n")
		return nil
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}

		gitRepo, err := git.PlainOpen(dir)
		if err != nil {
			i.console.Printf("Skipping '%s': %s\n", dir, err)
			continue
		}

		repo, ok := reposByDir[dir]
		if !ok {
			repo = &storages.Repository{RootDir: dir}
		}
		repo.Name = filepath.Base(dir)

		err = i.importRepository(ctx, repo, gitRepo, opts)
		if err != nil {
			return errors.Wrapf(err, "%v", repo.Name)
		}
	}

	return nil
}

func (i *HistoryImporter) importRepository(ctx context.Context, repo *storages.Repository, gitRepo *git.Repository, opts *HistoryOptions) error {
	branch := opts.Branch
	if branch == "" {
		branch = repo.Branch
	}

	target, gitRevision, err := findBranchHash(gitRepo, branch)
	if err != nil {
		return err
	}

	opts, err = withIgnoreFile(repo.RootDir, opts)
	if err != nil {
		return err
	}

	known := set.New[string](0)
	if opts.Incremental {
		known, err = i.storage.LoadCommitHashes(repo.RootDir)
		if err != nil {
			return err
		}
	}

	toImport, err := i.listCommitsToImport(gitRepo, gitRevision, known, opts)
	if err != nil {
		return err
	}

	repo.Branch = target
	repo.LastImport = time.Now()

	if len(toImport) == 0 {
		i.console.Printf("%v: Nothing to import\n", repo.Name)
		return i.storage.WriteRepository(repo)
	}

	i.console.Printf("%v: Importing %v commits from %v...\n", repo.Name, len(toImport), target)

	bar := utils.NewProgressBar(len(toImport))
	commits, err := i.importCommits(ctx, gitRepo, target, toImport, opts, bar)
	if err != nil {
		return err
	}

	i.console.Printf("%v: Writing results...\n", repo.Name)

	for _, batch := range lo.Chunk(commits, writeBatchSize) {
		err = i.storage.WriteCommits(repo.RootDir, batch)
		if err != nil {
			return err
		}
	}

	return i.storage.WriteRepository(repo)
}

func withIgnoreFile(rootDir string, opts *HistoryOptions) (*HistoryOptions, error) {
	file := filepath.Join(rootDir, IgnoreFileName)

	exists, err := utils.FileExists(file)
	if err != nil || !exists {
		return opts, err
	}

	matcher, err := ignore.CompileIgnoreFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %v", file)
	}

	result := *opts
	result.ignored = matcher
	return &result, nil
}

// ImportRepository reads the history of an already open repository without
// writing it to the storage.
func (i *HistoryImporter) ImportRepository(ctx context.Context, gitRepo *git.Repository, opts *HistoryOptions) ([]*model.ClassifiedCommit, error) {
	target, gitRevision, err := findBranchHash(gitRepo, opts.Branch)
	if err != nil {
		return nil, err
	}

	toImport, err := i.listCommitsToImport(gitRepo, gitRevision, set.New[string](0), opts)
	if err != nil {
		return nil, err
	}

	return i.importCommits(ctx, gitRepo, target, toImport, opts, nil)
}

func (i *HistoryImporter) listCommitsToImport(gitRepo *git.Repository, gitRevision plumbing.Hash, known *set.Set[string], opts *HistoryOptions) ([]*object.Commit, error) {
	commitsIter, err := log(gitRepo, gitRevision)
	if err != nil {
		return nil, err
	}

	var result []*object.Commit

	total := 0
	err = commitsIter.ForEach(func(gitCommit *object.Commit) error {
		if !opts.ShouldContinue(total, gitCommit.Committer.When) {
			return i.abort
		}
		total++

		if !opts.ShouldImport(gitCommit.Committer.When) {
			return nil
		}

		if known.Contains(gitCommit.Hash.String()) {
			return nil
		}

		result = append(result, gitCommit)
		return nil
	})
	if err != nil && err != i.abort {
		return nil, err
	}

	return result, nil
}

func (i *HistoryImporter) importCommits(ctx context.Context, gitRepo *git.Repository, target string, toImport []*object.Commit,
	opts *HistoryOptions, bar *progressbar.ProgressBar,
) ([]*model.ClassifiedCommit, error) {
	refs, err := loadRefs(gitRepo)
	if err != nil {
		return nil, err
	}

	result := make([]*model.ClassifiedCommit, 0, len(toImport))
	skipped := 0
	for _, gitCommit := range toImport {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if bar != nil {
			bar.Describe(gitCommit.Committer.When.Format("2006-01-02 15"))
		}

		commit, err := i.importCommit(ctx, gitCommit, refs, target, opts)

		var verr *model.ValidationError
		if errors.As(err, &verr) {
			if bar != nil {
				_ = bar.Clear()
			}
			i.console.Printf("Skipping commit %v: %v\n", shortHash(gitCommit.Hash.String()), err)
			skipped++
		} else if err != nil {
			return nil, errors.Wrapf(err, "commit %v", gitCommit.Hash.String())
		} else {
			result = append(result, commit)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if skipped > 0 {
		i.console.Printf("Skipped %v invalid commits\n", skipped)
	}

	return result, nil
}

func (i *HistoryImporter) importCommit(ctx context.Context, gitCommit *object.Commit, refs *refIndex, target string, opts *HistoryOptions) (*model.ClassifiedCommit, error) {
	author, err := model.NewActor(gitCommit.Author.Name, gitCommit.Author.Email, gitCommit.Author.When)
	if err != nil {
		return nil, err
	}

	committer, err := model.NewActor(gitCommit.Committer.Name, gitCommit.Committer.Email, gitCommit.Committer.When)
	if err != nil {
		return nil, err
	}

	meta, err := model.NewObjectMetadata(model.ObjectMetadataParams{
		SHA:       gitCommit.Hash.String(),
		Author:    author,
		Committer: committer,
		Parents: lo.Map(gitCommit.ParentHashes, func(h plumbing.Hash, _ int) string {
			return h.String()
		}),
		Signature: gitCommit.PGPSignature,
	})
	if err != nil {
		return nil, err
	}

	mods, err := i.computeChanges(ctx, gitCommit, opts)
	if err != nil {
		return nil, err
	}

	diff, err := model.NewChangeSet(model.SummarizeChanges(mods))
	if err != nil {
		return nil, err
	}

	summary := summaryOf(gitCommit.Message)

	commit, err := model.NewCommit(model.CommitParams{
		Metadata: meta,
		Summary:  summary,
		Message:  gitCommit.Message,
		Branches: refs.branchesAt(gitCommit.Hash),
		Tags:     refs.tagsAt(gitCommit.Hash),
		Diff:     diff,
	})
	if err != nil {
		return nil, err
	}

	params := classify(gitCommit, summary, target)

	if gitCommit.NumParents() == 2 {
		params.MergeBase, err = mergeBase(gitCommit)
		if err != nil {
			return nil, err
		}
	}

	classification, err := model.NewChangeClassification(params)
	if err != nil {
		return nil, err
	}

	return model.NewClassifiedCommit(commit, classification)
}

// mergeBase returns the best common ancestor of the two parents of a merge,
// or an empty string when they share no history.
func mergeBase(gitCommit *object.Commit) (string, error) {
	first, err := gitCommit.Parent(0)
	if err != nil {
		return "", err
	}

	second, err := gitCommit.Parent(1)
	if err != nil {
		return "", err
	}

	bases, err := first.MergeBase(second)
	if err != nil {
		return "", err
	}

	if len(bases) == 0 {
		return "", nil
	}

	return bases[0].Hash.String(), nil
}

// ShouldContinue reports whether the walk over the history, newest first,
// should go on after count commits.
func (l *HistoryOptions) ShouldContinue(count int, date time.Time) bool {
	if l.After != nil && date.Before(*l.After) {
		return false
	}

	if l.MaxCommits != nil && count >= *l.MaxCommits {
		return false
	}

	return true
}

func (l *HistoryOptions) ShouldImport(date time.Time) bool {
	return l.Before == nil || date.Before(*l.Before)
}
