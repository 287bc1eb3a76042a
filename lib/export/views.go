package export

import (
	"time"

	"github.com/go-enry/go-enry/v2"

	"github.com/pescuma/relnotes/lib/model"
)

type ActorView struct {
	Name  string    `json:"name" yaml:"name"`
	Email string    `json:"email" yaml:"email"`
	Date  time.Time `json:"date" yaml:"date"`
}

type StatsView struct {
	FilesChanged int `json:"filesChanged" yaml:"filesChanged"`
	Insertions   int `json:"insertions" yaml:"insertions"`
	Deletions    int `json:"deletions" yaml:"deletions"`
}

type FileView struct {
	Kind       string `json:"kind" yaml:"kind"`
	PathBefore string `json:"pathBefore,omitempty" yaml:"pathBefore,omitempty"`
	PathAfter  string `json:"pathAfter,omitempty" yaml:"pathAfter,omitempty"`
	Insertions int    `json:"insertions" yaml:"insertions"`
	Deletions  int    `json:"deletions" yaml:"deletions"`
	Language   string `json:"language,omitempty" yaml:"language,omitempty"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Patch      string `json:"patch,omitempty" yaml:"patch,omitempty"`
}

type CommitView struct {
	SHA       string     `json:"sha" yaml:"sha"`
	ShortSHA  string     `json:"shortSha" yaml:"shortSha"`
	Summary   string     `json:"summary" yaml:"summary"`
	Message   string     `json:"message" yaml:"message"`
	Author    ActorView  `json:"author" yaml:"author"`
	Committer ActorView  `json:"committer" yaml:"committer"`
	Parents   []string   `json:"parents" yaml:"parents"`
	Signature string     `json:"signature,omitempty" yaml:"signature,omitempty"`
	Branches  []string   `json:"branches" yaml:"branches"`
	Tags      []string   `json:"tags" yaml:"tags"`
	AISummary string     `json:"aiSummary,omitempty" yaml:"aiSummary,omitempty"`
	Stats     StatsView  `json:"stats" yaml:"stats"`
	Files     []FileView `json:"files,omitempty" yaml:"files,omitempty"`

	ChangeType     string   `json:"changeType" yaml:"changeType"`
	SourceBranches []string `json:"sourceBranches" yaml:"sourceBranches"`
	TargetBranch   string   `json:"targetBranch" yaml:"targetBranch"`
	MergeBase      string   `json:"mergeBase,omitempty" yaml:"mergeBase,omitempty"`
	PullRequestID  string   `json:"pullRequestId,omitempty" yaml:"pullRequestId,omitempty"`
}

type ViewOptions struct {
	IncludeFiles   bool
	IncludePatches bool
}

func NewActorView(a *model.Actor) ActorView {
	return ActorView{
		Name:  a.Name(),
		Email: a.Email(),
		Date:  a.Timestamp(),
	}
}

func NewCommitView(c *model.ClassifiedCommit, opts ViewOptions) *CommitView {
	commit := c.Commit()
	meta := commit.Metadata()
	diff := commit.Diff()
	cl := c.Classification()

	result := &CommitView{
		SHA:       meta.SHA(),
		ShortSHA:  commit.ShortSHA(),
		Summary:   commit.Summary(),
		Message:   commit.Message(),
		Author:    NewActorView(meta.Author()),
		Committer: NewActorView(meta.Committer()),
		Parents:   nonNil(meta.Parents()),
		Branches:  nonNil(commit.Branches()),
		Tags:      nonNil(commit.Tags()),
		Stats: StatsView{
			FilesChanged: diff.FilesChanged(),
			Insertions:   diff.Insertions(),
			Deletions:    diff.Deletions(),
		},
		ChangeType:     string(cl.ChangeType()),
		SourceBranches: nonNil(cl.SourceBranches()),
		TargetBranch:   cl.TargetBranch(),
	}

	if meta.IsSigned() {
		result.Signature = string(meta.SignatureKind())
	}
	result.AISummary, _ = commit.AISummary()
	result.MergeBase, _ = cl.MergeBase()
	result.PullRequestID, _ = cl.PullRequestID()

	if opts.IncludeFiles {
		for _, m := range diff.Modifications() {
			result.Files = append(result.Files, NewFileView(m, opts.IncludePatches))
		}
	}

	return result
}

func NewFileView(f *model.FileChange, includePatch bool) FileView {
	result := FileView{
		Kind:       string(f.Kind()),
		Insertions: f.Insertions(),
		Deletions:  f.Deletions(),
	}

	result.PathBefore, _ = f.PathBefore()
	result.PathAfter, _ = f.PathAfter()
	if includePatch {
		result.Patch, _ = f.Patch()
	}

	path := f.EffectivePath()
	result.Language = enry.GetLanguage(path, nil)
	result.Category = categoryOf(path)

	return result
}

func categoryOf(path string) string {
	switch {
	case enry.IsVendor(path):
		return "vendor"
	case enry.IsDocumentation(path):
		return "documentation"
	case enry.IsTest(path):
		return "test"
	case enry.IsConfiguration(path):
		return "configuration"
	default:
		return ""
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
