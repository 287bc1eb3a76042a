package main

import (
	gocontext "context"
	"time"

	"github.com/pescuma/relnotes/lib/importers/git"
)

type ImportCmd struct {
	Paths        []string  `arg:"" help:"Paths to recursively search for git repositories." type:"existingpath"`
	Branch       string    `help:"Git branch to use to import data. Default is the current branch."`
	Incremental  bool      `default:"true" negatable:"" help:"Don't import commits already imported."`
	LimitCommits int       `help:"Limit the number of commits to be imported. Counted from the latest commit."`
	After        time.Time `help:"Import commits after this date (inclusive)." format:"2006-01-02"`
	Before       time.Time `help:"Import commits before this date (exclusive)." format:"2006-01-02"`
	Exclude      []string  `short:"e" help:"Globs of files to ignore when computing changes."`
	Patches      bool      `help:"Store the patch of each changed file."`
	MaxPatchSize int64     `default:"1048576" help:"Patches bigger than this (in bytes) are not stored."`
}

func (c *ImportCmd) Run(ctx *context) error {
	return ctx.ws.ImportGitHistory(gocontext.Background(), c.Paths, &git.HistoryOptions{
		Branch:         c.Branch,
		Incremental:    c.Incremental,
		MaxCommits:     toOption(c.LimitCommits),
		After:          toOption(c.After),
		Before:         toOption(c.Before),
		Exclude:        c.Exclude,
		IncludePatches: c.Patches,
		MaxPatchSize:   c.MaxPatchSize,
	})
}
