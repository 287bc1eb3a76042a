package server

import (
	"math"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/export"
	"github.com/pescuma/relnotes/lib/filters"
	"github.com/pescuma/relnotes/lib/model"
)

type CommitPatchParams struct {
	SHA       string  `uri:"sha"`
	AISummary *string `json:"aiSummary"`
}

func (s *server) initCommits(r *gin.Engine) {
	r.GET("/api/commits", getP[ListParams](s.commitsList))
	r.GET("/api/commits/:sha", getP[GetParams](s.commitGet))
	r.PATCH("/api/commits/:sha", patchP[CommitPatchParams](s.commitPatch))
	r.GET("/api/stats/changes", getP[StatsParams](s.statsChanges))
	r.GET("/api/stats/seen/commits", getP[StatsParams](s.statsSeenCommits))
	r.GET("/api/change-types", get(s.changeTypesList))
}

func (s *server) listCommits(params *Filters) ([]*model.ClassifiedCommit, error) {
	commits, err := s.storage.LoadCommits()
	if err != nil {
		return nil, err
	}

	f, err := filters.New(params.toOptions())
	if err != nil {
		return nil, errors.Wrap(errorBadRequest, err.Error())
	}

	return filters.Apply(commits, f), nil
}

func (s *server) commitsList(params *ListParams) (any, error) {
	commits, err := s.listCommits(&params.Filters)
	if err != nil {
		return nil, err
	}

	err = s.sortCommits(commits, params.Sort, params.Asc)
	if err != nil {
		return nil, err
	}

	total := len(commits)

	commits = paginate(commits, params.Offset, params.Limit)

	opts := export.ViewOptions{IncludeFiles: params.Files || params.Patches, IncludePatches: params.Patches}
	result := lo.Map(commits, func(c *model.ClassifiedCommit, _ int) *export.CommitView {
		return export.NewCommitView(c, opts)
	})

	return gin.H{
		"data":  result,
		"total": total,
	}, nil
}

func (s *server) sortCommits(col []*model.ClassifiedCommit, field string, asc *bool) error {
	if field == "" {
		field = "date"
	}
	if asc == nil {
		asc = lo.ToPtr(false)
	}

	switch strings.ToLower(field) {
	case "date":
		sortBy(col, func(c *model.ClassifiedCommit) int64 { return committedAt(c).UnixNano() }, *asc)
	case "sha":
		sortBy(col, func(c *model.ClassifiedCommit) string { return c.SHA() }, *asc)
	case "author":
		sortBy(col, func(c *model.ClassifiedCommit) string {
			return strings.ToLower(c.Commit().Metadata().Author().Name())
		}, *asc)
	case "type":
		sortBy(col, func(c *model.ClassifiedCommit) string { return string(c.ChangeType()) }, *asc)
	case "changes":
		sortBy(col, func(c *model.ClassifiedCommit) int { return c.Commit().TotalChanges() }, *asc)
	case "files":
		sortBy(col, func(c *model.ClassifiedCommit) int { return c.Commit().Diff().FilesChanged() }, *asc)
	default:
		return errors.Wrapf(errorBadRequest, "unknown sort field: %v", field)
	}

	return nil
}

func (s *server) commitGet(params *GetParams) (any, error) {
	c, err := s.storage.LoadCommit(params.SHA)
	if err != nil {
		return nil, err
	}

	return export.NewCommitView(c, export.ViewOptions{IncludeFiles: true, IncludePatches: params.Patches}), nil
}

func (s *server) commitPatch(params *CommitPatchParams) (any, error) {
	if params.AISummary == nil {
		return nil, errors.Wrap(errorBadRequest, "missing aiSummary")
	}

	c, err := s.storage.LoadCommit(params.SHA)
	if err != nil {
		return nil, err
	}

	err = s.storage.WriteAISummary(c.SHA(), *params.AISummary)
	if err != nil {
		return nil, err
	}

	c.Commit().SetAISummary(*params.AISummary)

	return export.NewCommitView(c, export.ViewOptions{IncludeFiles: true}), nil
}

func (s *server) statsChanges(params *StatsParams) (any, error) {
	commits, err := s.listCommits(&params.Filters)
	if err != nil {
		return nil, err
	}

	result := lo.SliceToMap(model.ChangeTypes, func(ct model.ChangeType) (string, int) {
		return string(ct), 0
	})
	for _, c := range commits {
		result[string(c.ChangeType())]++
	}

	return gin.H{
		"data":  result,
		"total": len(commits),
	}, nil
}

func (s *server) statsSeenCommits(params *StatsParams) (any, error) {
	commits, err := s.listCommits(&params.Filters)
	if err != nil {
		return nil, err
	}

	byMonth := lo.GroupBy(commits, func(c *model.ClassifiedCommit) string {
		return committedAt(c).Format("2006-01")
	})

	return lo.MapValues(byMonth, func(cs []*model.ClassifiedCommit, _ string) map[string]int {
		result := map[string]int{"total": len(cs)}
		for _, c := range cs {
			result[string(c.ChangeType())]++
		}
		return result
	}), nil
}

func (s *server) changeTypesList() (any, error) {
	counts, err := s.storage.CountChangeTypes()
	if err != nil {
		return nil, err
	}

	return lo.Map(model.ChangeTypes, func(ct model.ChangeType, _ int) gin.H {
		minSources, maxSources := ct.SourceBranchLimits()
		return gin.H{
			"name":       string(ct),
			"minSources": minSources,
			"maxSources": lo.Ternary[any](maxSources == math.MaxInt, nil, maxSources),
			"count":      counts[ct],
		}
	}), nil
}

func committedAt(c *model.ClassifiedCommit) time.Time {
	return c.Commit().Metadata().Committer().Timestamp()
}
