package export

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/utils"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unknown export format: %v (use json or yaml)", s)
	}
}

type Document struct {
	GeneratedAt time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Total       int            `json:"total" yaml:"total"`
	ChangeTypes map[string]int `json:"changeTypes" yaml:"changeTypes"`
	Commits     []*CommitView  `json:"commits" yaml:"commits"`
}

func NewDocument(commits []*model.ClassifiedCommit, opts ViewOptions, now time.Time) (*Document, error) {
	views, err := utils.ParallelMap(commits, func(c *model.ClassifiedCommit) (*CommitView, error) {
		return NewCommitView(c, opts), nil
	})
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, c := range commits {
		counts[string(c.ChangeType())]++
	}

	return &Document{
		GeneratedAt: now,
		Total:       len(views),
		ChangeTypes: counts,
		Commits:     views,
	}, nil
}

func Write(w io.Writer, format Format, doc *Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "error writing JSON")

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(doc)
		if err != nil {
			return errors.Wrap(err, "error writing YAML")
		}

		return enc.Close()

	default:
		return errors.Errorf("unknown export format: %v", format)
	}
}
