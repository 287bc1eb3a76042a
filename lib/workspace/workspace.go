package workspace

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/lineprefix"
	"github.com/pkg/errors"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/export"
	"github.com/pescuma/relnotes/lib/filters"
	"github.com/pescuma/relnotes/lib/importers/git"
	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/server"
	"github.com/pescuma/relnotes/lib/storages"
	"github.com/pescuma/relnotes/lib/storages/orm"
	"github.com/pescuma/relnotes/lib/utils"
)

const (
	ConfigImportBranch  = "import.branch"
	ConfigImportExclude = "import.exclude"
	ConfigServerPort    = "server.port"
)

var KnownConfigs = []string{ConfigImportBranch, ConfigImportExclude, ConfigServerPort}

type Workspace struct {
	console consoles.Console
	storage storages.Storage
}

func NewWorkspace(file string) (*Workspace, error) {
	return newWorkspace(file, consoles.NewStdOutConsole())
}

func newWorkspace(file string, console consoles.Console) (*Workspace, error) {
	if file == "" {
		if _, err := os.Stat("./.relnotes"); err == nil {
			file = "./.relnotes/relnotes.sqlite"
		} else {
			file = "~/.relnotes/relnotes.sqlite"
		}
	}

	var storage storages.Storage
	var err error
	switch {
	case file == ":memory:":
		storage, err = orm.NewGormStorage(orm.WithSqliteInMemory(), console)

	case strings.HasSuffix(file, ".sqlite"):
		file, err = utils.PathAbs(file)
		if err != nil {
			return nil, err
		}

		err = createWorkspaceDir(console, file)
		if err != nil {
			return nil, err
		}

		storage, err = orm.NewGormStorage(orm.WithSqlite(file), console)

	default:
		return nil, errors.Errorf("unknown storage type for file %v", file)
	}
	if err != nil {
		return nil, err
	}

	return &Workspace{
		console: console,
		storage: storage,
	}, nil
}

func createWorkspaceDir(console consoles.Console, file string) error {
	path := filepath.Dir(file)

	if _, err := os.Stat(path); err != nil {
		console.Printf("Creating workspace at %v\n", path)
		err = os.MkdirAll(path, 0o700)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) Close() error {
	return w.storage.Close()
}

func (w *Workspace) Console() consoles.Console {
	return w.console
}

func (w *Workspace) Execute(f func(consoles.Console, storages.Storage) error) error {
	return f(w.console, w.storage)
}

// SetGlobalConfig stores a setting. An empty value removes it. Returns
// whether anything changed.
func (w *Workspace) SetGlobalConfig(config string, value string) (bool, error) {
	config = strings.ToLower(strings.TrimSpace(config))
	value = strings.TrimSpace(value)

	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return false, err
	}

	if config == ConfigServerPort && value != "" {
		if _, err := strconv.ParseUint(value, 10, 16); err != nil {
			return false, errors.Errorf("invalid port: %v", value)
		}
	}

	old, ok := (*cfg)[config]
	switch {
	case value == "" && !ok:
		return false, nil
	case value == "":
		delete(*cfg, config)
	case ok && old == value:
		return false, nil
	default:
		(*cfg)[config] = value
	}

	err = w.storage.WriteConfig()
	if err != nil {
		return false, err
	}

	return true, nil
}

func (w *Workspace) GetGlobalConfig(config string) (string, bool, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return "", false, err
	}

	v, ok := (*cfg)[strings.ToLower(strings.TrimSpace(config))]
	return v, ok, nil
}

// ListGlobalConfig returns every stored setting, sorted by name.
func (w *Workspace) ListGlobalConfig() ([][2]string, error) {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return nil, err
	}

	result := make([][2]string, 0, len(*cfg))
	for k, v := range *cfg {
		result = append(result, [2]string{k, v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i][0] < result[j][0] })

	return result, nil
}

// ImportGitHistory imports the repositories under dirs. Settings missing from
// opts come from the stored configuration.
func (w *Workspace) ImportGitHistory(ctx context.Context, dirs []string, opts *git.HistoryOptions) error {
	cfg, err := w.storage.LoadConfig()
	if err != nil {
		return err
	}

	if opts.Branch == "" {
		opts.Branch = (*cfg)[ConfigImportBranch]
	}
	opts.Exclude = append(opts.Exclude, utils.SplitList((*cfg)[ConfigImportExclude])...)

	importer := git.NewHistoryImporter(w.console, w.storage)
	return importer.Import(ctx, dirs, opts)
}

func (w *Workspace) LoadRepositories() ([]*storages.Repository, error) {
	return w.storage.LoadRepositories()
}

func (w *Workspace) LoadCommits(opts filters.Options) ([]*model.ClassifiedCommit, error) {
	commits, err := w.storage.LoadCommits()
	if err != nil {
		return nil, err
	}

	f, err := filters.New(opts)
	if err != nil {
		return nil, err
	}

	return filters.Apply(commits, f), nil
}

func (w *Workspace) LoadCommit(sha string) (*model.ClassifiedCommit, error) {
	return w.storage.LoadCommit(sha)
}

func (w *Workspace) Export(out io.Writer, format export.Format, filter filters.Options, opts export.ViewOptions) error {
	commits, err := w.LoadCommits(filter)
	if err != nil {
		return err
	}

	doc, err := export.NewDocument(commits, opts, time.Now())
	if err != nil {
		return err
	}

	return export.Write(out, format, doc)
}

// Annotate attaches an AI generated summary to the commit matching sha. An
// empty summary removes it.
func (w *Workspace) Annotate(sha string, summary string) (*model.ClassifiedCommit, error) {
	c, err := w.storage.LoadCommit(sha)
	if err != nil {
		return nil, err
	}

	err = w.storage.WriteAISummary(c.SHA(), summary)
	if err != nil {
		return nil, err
	}

	c.Commit().SetAISummary(summary)

	return c, nil
}

func (w *Workspace) Serve(port uint) error {
	if port == 0 {
		v, ok, err := w.GetGlobalConfig(ConfigServerPort)
		if err != nil {
			return err
		}

		if ok {
			p, err := strconv.ParseUint(v, 10, 16)
			if err != nil {
				return errors.Wrapf(err, "invalid %v", ConfigServerPort)
			}
			port = uint(p)
		}
	}

	return server.Run(w.console, w.storage, &server.Options{
		Port: port,
	})
}

func (w *Workspace) RunGit(args ...string) error {
	repos, err := w.storage.LoadRepositories()
	if err != nil {
		return err
	}

	for _, repo := range repos {
		cmd := exec.Command("git", args...)
		cmd.Dir = repo.RootDir

		w.console.Printf("%v: Executing '%v'\n", repo.Name, strings.Join(cmd.Args, "' '"))
		w.console.PushPrefix("%v: ", repo.Name)

		prefix := lineprefix.PrefixFunc(func() string {
			return w.console.Prepare("")
		})

		cmd.Stdin = os.Stdin
		cmd.Stdout = lineprefix.New(lineprefix.Writer(os.Stdout), prefix)
		cmd.Stderr = lineprefix.New(lineprefix.Writer(os.Stderr), prefix)

		_ = cmd.Run()

		w.console.PopPrefix()
	}

	return nil
}
