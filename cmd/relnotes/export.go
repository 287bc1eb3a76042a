package main

import (
	"io"
	"os"

	"github.com/pescuma/relnotes/lib/export"
)

type ExportCmd struct {
	cmdWithFilters

	Format  string `short:"F" default:"json" enum:"json,yaml,yml" help:"Output format (json or yaml)."`
	Output  string `short:"o" help:"File to write to. Default is stdout." type:"path"`
	Files   bool   `default:"true" negatable:"" help:"Include the changed files of each commit."`
	Patches bool   `help:"Include the patches of each changed file."`
}

func (c *ExportCmd) Run(ctx *context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()

		out = f
	}

	return ctx.ws.Export(out, format, c.filterOptions(), export.ViewOptions{
		IncludeFiles:   c.Files || c.Patches,
		IncludePatches: c.Patches,
	})
}
