package orm

import (
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
)

type sqlPathPair struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

type sqlCommit struct {
	Hash          string `gorm:"primaryKey"`
	RepositoryDir string `gorm:"index"`

	AuthorName     string
	AuthorEmail    string `gorm:"index"`
	AuthorDate     time.Time
	CommitterName  string
	CommitterEmail string
	CommitterDate  time.Time `gorm:"index"`
	Parents        []string  `gorm:"serializer:json"`
	Signature      *string

	Summary   string
	Message   string
	Branches  []string `gorm:"serializer:json"`
	Tags      []string `gorm:"serializer:json"`
	AISummary *string

	FilesChanged  int
	Insertions    int
	Deletions     int
	AffectedPaths []sqlPathPair `gorm:"serializer:json"`

	ChangeType     model.ChangeType `gorm:"index"`
	SourceBranches []string         `gorm:"serializer:json"`
	TargetBranch   string
	MergeBase      *string
	PullRequestID  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlCommit(rootDir string, c *model.ClassifiedCommit) *sqlCommit {
	commit := c.Commit()
	meta := commit.Metadata()
	diff := commit.Diff()
	cl := c.Classification()

	signature, signed := meta.Signature()
	aiSummary, hasAISummary := commit.AISummary()
	mergeBase, hasMergeBase := cl.MergeBase()
	pr, hasPR := cl.PullRequestID()

	return &sqlCommit{
		Hash:           meta.SHA(),
		RepositoryDir:  rootDir,
		AuthorName:     meta.Author().Name(),
		AuthorEmail:    meta.Author().Email(),
		AuthorDate:     meta.Author().Timestamp(),
		CommitterName:  meta.Committer().Name(),
		CommitterEmail: meta.Committer().Email(),
		CommitterDate:  meta.Committer().Timestamp(),
		Parents:        encodeList(meta.Parents()),
		Signature:      encodeOptional(signature, signed),
		Summary:        commit.Summary(),
		Message:        commit.Message(),
		Branches:       encodeList(commit.Branches()),
		Tags:           encodeList(commit.Tags()),
		AISummary:      encodeOptional(aiSummary, hasAISummary),
		FilesChanged:   diff.FilesChanged(),
		Insertions:     diff.Insertions(),
		Deletions:      diff.Deletions(),
		AffectedPaths: lo.Map(diff.AffectedPaths(), func(p model.PathPair, _ int) sqlPathPair {
			return sqlPathPair{Before: p.Before, After: p.After}
		}),
		ChangeType:     cl.ChangeType(),
		SourceBranches: encodeList(cl.SourceBranches()),
		TargetBranch:   cl.TargetBranch(),
		MergeBase:      encodeOptional(mergeBase, hasMergeBase),
		PullRequestID:  encodeOptional(pr, hasPR),
	}
}

func (s *sqlCommit) CacheKey() string {
	return s.Hash
}

// toModel rebuilds the entities through their constructors, so rows written
// by older versions are validated again.
func (s *sqlCommit) toModel(files []*sqlFileChange) (*model.ClassifiedCommit, error) {
	author, err := model.NewActor(s.AuthorName, s.AuthorEmail, s.AuthorDate)
	if err != nil {
		return nil, err
	}

	committer := author
	if s.CommitterName != s.AuthorName || s.CommitterEmail != s.AuthorEmail || !s.CommitterDate.Equal(s.AuthorDate) {
		committer, err = model.NewActor(s.CommitterName, s.CommitterEmail, s.CommitterDate)
		if err != nil {
			return nil, err
		}
	}

	meta, err := model.NewObjectMetadata(model.ObjectMetadataParams{
		SHA:       s.Hash,
		Author:    author,
		Committer: committer,
		Parents:   s.Parents,
		Signature: decodeOptional(s.Signature),
	})
	if err != nil {
		return nil, err
	}

	mods := make([]*model.FileChange, 0, len(files))
	for _, f := range files {
		m, err := f.toModel()
		if err != nil {
			return nil, errors.Wrapf(err, "file %v", f.Index)
		}
		mods = append(mods, m)
	}

	diff, err := model.NewChangeSet(model.ChangeSetParams{
		Modifications: mods,
		FilesChanged:  s.FilesChanged,
		Insertions:    s.Insertions,
		Deletions:     s.Deletions,
		AffectedPaths: lo.Map(s.AffectedPaths, func(p sqlPathPair, _ int) model.PathPair {
			return model.PathPair{Before: p.Before, After: p.After}
		}),
	})
	if err != nil {
		return nil, err
	}

	commit, err := model.NewCommit(model.CommitParams{
		Metadata:  meta,
		Summary:   s.Summary,
		Message:   s.Message,
		Branches:  s.Branches,
		Tags:      s.Tags,
		Diff:      diff,
		AISummary: decodeOptional(s.AISummary),
	})
	if err != nil {
		return nil, err
	}

	cl, err := model.NewChangeClassification(model.ChangeClassificationParams{
		ChangeType:     s.ChangeType,
		SourceBranches: s.SourceBranches,
		TargetBranch:   s.TargetBranch,
		MergeBase:      decodeOptional(s.MergeBase),
		PullRequestID:  decodeOptional(s.PullRequestID),
	})
	if err != nil {
		return nil, err
	}

	return model.NewClassifiedCommit(commit, cl)
}

type sqlFileChange struct {
	CommitHash string `gorm:"primaryKey"`
	Index      int    `gorm:"primaryKey;autoIncrement:false"`
	PathBefore string
	PathAfter  string `gorm:"index"`
	Kind       model.ModificationKind
	Insertions int
	Deletions  int
	Patch      []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlFileChange(hash string, index int, f *model.FileChange) *sqlFileChange {
	before, _ := f.PathBefore()
	after, _ := f.PathAfter()
	patch, _ := f.Patch()

	return &sqlFileChange{
		CommitHash: hash,
		Index:      index,
		PathBefore: before,
		PathAfter:  after,
		Kind:       f.Kind(),
		Insertions: f.Insertions(),
		Deletions:  f.Deletions(),
		Patch:      encodePatch(patch),
	}
}

func (s *sqlFileChange) toModel() (*model.FileChange, error) {
	patch, err := decodePatch(s.Patch)
	if err != nil {
		return nil, err
	}

	return model.NewFileChange(model.FileChangeParams{
		PathBefore: s.PathBefore,
		PathAfter:  s.PathAfter,
		Kind:       s.Kind,
		Insertions: s.Insertions,
		Deletions:  s.Deletions,
		Patch:      patch,
	})
}
