package storages

import (
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/relnotes/lib/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("more than one commit matches")
)

type Storage interface {
	LoadRepositories() ([]*Repository, error)
	WriteRepository(repo *Repository) error

	LoadCommits() ([]*model.ClassifiedCommit, error)
	LoadCommit(sha string) (*model.ClassifiedCommit, error)
	LoadCommitHashes(rootDir string) (*set.Set[string], error)
	WriteCommits(rootDir string, commits []*model.ClassifiedCommit) error
	WriteAISummary(sha string, summary string) error
	CountChangeTypes() (map[model.ChangeType]int, error)

	LoadConfig() (*map[string]string, error)
	WriteConfig() error

	Close() error
}

type Factory = func(path string) (Storage, error)

// Repository is an imported Git working copy.
type Repository struct {
	RootDir    string
	Name       string
	Branch     string
	LastImport time.Time
}
