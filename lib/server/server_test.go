package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/model/modeltest"
	"github.com/pescuma/relnotes/lib/storages"
	"github.com/pescuma/relnotes/lib/storages/orm"
)

func TestServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testgroup.RunInParallel(t, &ServerTests{})
}

type ServerTests struct{}

func newTestServer(t *testing.T) (*gin.Engine, storages.Storage) {
	storage, err := orm.NewGormStorage(orm.WithSqliteInMemory(), consoles.NewWriterConsole(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	commits := []*model.ClassifiedCommit{
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:     "abcd1111",
			When:    modeltest.Now,
			Summary: "Add parser",
			Files:   []*model.FileChange{modeltest.File(t, "", "lib/parser.go", model.Added, 10, 0)},
		}),
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:     "abcd2222",
			Author:  "Bob Smith",
			Email:   "bob@example.com",
			When:    modeltest.Now.Add(time.Hour),
			Parents: []string{"abcd1111"},
			Summary: "Fix docs",
			Files:   []*model.FileChange{modeltest.File(t, "README.md", "README.md", model.Modified, 1, 1)},
		}),
		modeltest.Commit(t, modeltest.CommitSpec{
			SHA:            "ef013333",
			When:           modeltest.Now.Add(2 * time.Hour),
			Parents:        []string{"abcd2222", "99998888"},
			Summary:        "Merge pull request #7 from octo/feature",
			ChangeType:     model.ChangeMerge,
			SourceBranches: []string{"octo/feature"},
			PullRequestID:  "7",
		}),
	}
	require.NoError(t, storage.WriteCommits("/repo", commits))

	return newServer(storage, nil).router(), storage
}

func call(t *testing.T, r http.Handler, method, url, body string) (int, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var result map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	}

	return w.Code, result
}

func shas(result map[string]any) []string {
	var out []string
	for _, c := range result["data"].([]any) {
		out = append(out, c.(map[string]any)["sha"].(string))
	}
	return out
}

func (g *ServerTests) ListDefaultsToNewestFirst(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodGet, "/api/commits", "")
	t.Require.Equal(http.StatusOK, code)
	t.Equal(float64(3), result["total"])
	t.Equal([]string{"ef013333", "abcd2222", "abcd1111"}, shas(result))

	first := result["data"].([]any)[0].(map[string]any)
	t.Nil(first["files"])
}

func (g *ServerTests) ListSortsAndPaginates(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodGet, "/api/commits?sort=sha&asc=true&offset=1&limit=1", "")
	t.Require.Equal(http.StatusOK, code)
	t.Equal(float64(3), result["total"])
	t.Equal([]string{"abcd2222"}, shas(result))

	code, _ = call(t.T, r, http.MethodGet, "/api/commits?sort=color", "")
	t.Equal(http.StatusBadRequest, code)
}

func (g *ServerTests) ListFilters(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	_, result := call(t.T, r, http.MethodGet, "/api/commits?type=merge", "")
	t.Equal([]string{"ef013333"}, shas(result))

	_, result = call(t.T, r, http.MethodGet, "/api/commits?author=bob", "")
	t.Equal([]string{"abcd2222"}, shas(result))

	_, result = call(t.T, r, http.MethodGet, "/api/commits?path=lib/**&files=true", "")
	t.Require.Equal([]string{"abcd1111"}, shas(result))
	files := result["data"].([]any)[0].(map[string]any)["files"].([]any)
	t.Equal("lib/parser.go", files[0].(map[string]any)["pathAfter"])

	_, result = call(t.T, r, http.MethodGet, "/api/commits?q="+"type:direct%20%26%20!author:bob", "")
	t.Equal([]string{"abcd1111"}, shas(result))

	code, _ := call(t.T, r, http.MethodGet, "/api/commits?type=bogus", "")
	t.Equal(http.StatusBadRequest, code)
}

func (g *ServerTests) GetByPrefix(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodGet, "/api/commits/EF01", "")
	t.Require.Equal(http.StatusOK, code)
	t.Equal("ef013333", result["sha"])
	t.Equal("merge", result["changeType"])
	t.Equal("7", result["pullRequestId"])

	code, _ = call(t.T, r, http.MethodGet, "/api/commits/abcd", "")
	t.Equal(http.StatusConflict, code)

	code, _ = call(t.T, r, http.MethodGet, "/api/commits/0000", "")
	t.Equal(http.StatusNotFound, code)
}

func (g *ServerTests) PatchAISummary(t *testgroup.T) {
	r, storage := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodPatch, "/api/commits/abcd1", `{"aiSummary":"  Adds a parser.  "}`)
	t.Require.Equal(http.StatusOK, code)
	t.Equal("Adds a parser.", result["aiSummary"])

	c, err := storage.LoadCommit("abcd1111")
	t.Require.NoError(err)
	summary, ok := c.Commit().AISummary()
	t.True(ok)
	t.Equal("Adds a parser.", summary)

	code, _ = call(t.T, r, http.MethodPatch, "/api/commits/abcd1111", `{}`)
	t.Equal(http.StatusBadRequest, code)

	code, _ = call(t.T, r, http.MethodPatch, "/api/commits/0000", `{"aiSummary":"x"}`)
	t.Equal(http.StatusNotFound, code)
}

func (g *ServerTests) StatsChanges(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodGet, "/api/stats/changes", "")
	t.Require.Equal(http.StatusOK, code)
	t.Equal(float64(3), result["total"])

	data := result["data"].(map[string]any)
	t.Equal(float64(2), data["direct"])
	t.Equal(float64(1), data["merge"])
	t.Equal(float64(0), data["squash"])
}

func (g *ServerTests) StatsSeenCommits(t *testgroup.T) {
	r, _ := newTestServer(t.T)

	code, result := call(t.T, r, http.MethodGet, "/api/stats/seen/commits", "")
	t.Require.Equal(http.StatusOK, code)

	month := result["2024-01"].(map[string]any)
	t.Equal(float64(3), month["total"])
	t.Equal(float64(1), month["merge"])
}
