package server

import (
	"time"

	"github.com/pescuma/relnotes/lib/filters"
	"github.com/pescuma/relnotes/lib/utils"
)

type Filters struct {
	FilterType      string     `form:"type"`
	FilterPath      string     `form:"path"`
	FilterExclude   string     `form:"exclude"`
	FilterAuthor    string     `form:"author"`
	FilterAfter     *time.Time `form:"after" time_format:"2006-01-02"`
	FilterBefore    *time.Time `form:"before" time_format:"2006-01-02"`
	FilterAnnotated bool       `form:"annotated"`
	FilterRule      string     `form:"q"`
}

func (f *Filters) toOptions() filters.Options {
	return filters.Options{
		ChangeTypes:   utils.SplitList(f.FilterType),
		Paths:         utils.SplitList(f.FilterPath),
		ExcludePaths:  utils.SplitList(f.FilterExclude),
		Authors:       utils.SplitList(f.FilterAuthor),
		After:         f.FilterAfter,
		Before:        f.FilterBefore,
		OnlyAnnotated: f.FilterAnnotated,
		Rule:          f.FilterRule,
	}
}

type ListParams struct {
	GridParams
	Filters

	Files   bool `form:"files"`
	Patches bool `form:"patches"`
}

type GetParams struct {
	SHA     string `uri:"sha"`
	Patches bool   `form:"patches"`
}

type StatsParams struct {
	Filters
}
