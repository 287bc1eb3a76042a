package main

import (
	"time"

	"github.com/pescuma/relnotes/lib/filters"
)

type cmdWithFilters struct {
	Type      []string  `short:"t" help:"Only commits with these change types."`
	Path      []string  `short:"p" help:"Only commits touching files matching these globs."`
	Exclude   []string  `short:"x" help:"Ignore files matching these globs when matching paths."`
	Author    []string  `short:"a" help:"Only commits by these authors (name or email)."`
	After     time.Time `help:"Only commits after this date (inclusive)." format:"2006-01-02"`
	Before    time.Time `help:"Only commits before this date (exclusive)." format:"2006-01-02"`
	Annotated bool      `help:"Only commits with an AI summary."`
	Rule      string    `short:"r" help:"Filter expression, like 'type:merge & path:lib/**'."`
}

func (c *cmdWithFilters) filterOptions() filters.Options {
	return filters.Options{
		ChangeTypes:   c.Type,
		Paths:         c.Path,
		ExcludePaths:  c.Exclude,
		Authors:       c.Author,
		After:         toOption(c.After),
		Before:        toOption(c.Before),
		OnlyAnnotated: c.Annotated,
		Rule:          c.Rule,
	}
}

func toOption[T comparable](d T) *T {
	var def T

	if d == def {
		return nil
	} else {
		return &d
	}
}
