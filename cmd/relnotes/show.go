package main

import (
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/model"
)

type ShowCmd struct {
	cmdWithFilters

	Limit int  `short:"n" help:"Maximum number of commits to show."`
	Files bool `short:"f" help:"Also show the changed files."`
}

func (c *ShowCmd) Run(ctx *context) error {
	commits, err := ctx.ws.LoadCommits(c.filterOptions())
	if err != nil {
		return err
	}

	total := len(commits)
	if c.Limit > 0 && c.Limit < total {
		commits = commits[:c.Limit]
	}

	console := ctx.ws.Console()
	for _, cc := range commits {
		c.print(ctx, cc)
	}

	console.Printf("%v of %v commits\n", humanize.Comma(int64(len(commits))), humanize.Comma(int64(total)))

	return nil
}

func (c *ShowCmd) print(ctx *context, cc *model.ClassifiedCommit) {
	console := ctx.ws.Console()
	commit := cc.Commit()

	console.Printf("%v  %v  %v  %v\n", commit, cc.Classification(),
		commit.Metadata().Author().Name(),
		humanize.Time(commit.Metadata().Committer().Timestamp()))

	if ai, ok := commit.AISummary(); ok {
		console.Printf("    AI: %v\n", ai)
	}

	if c.Files {
		lo.ForEach(commit.Diff().Modifications(), func(f *model.FileChange, _ int) {
			console.Printf("    %v\n", f)
		})
	}
}
