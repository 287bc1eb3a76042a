package main

import (
	"github.com/alecthomas/kong"

	"github.com/pescuma/relnotes/lib/workspace"
)

var cli struct {
	Workspace string `short:"w" help:"Workspace to store data. Default is ./.relnotes or ~/.relnotes if that does not exist."`

	Import   ImportCmd   `cmd:"" help:"Import the history of git repositories."`
	Show     ShowCmd     `cmd:"" help:"Show imported commits."`
	Export   ExportCmd   `cmd:"" help:"Export imported commits as JSON or YAML."`
	Annotate AnnotateCmd `cmd:"" help:"Attach an AI generated summary to a commit."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP API."`
	Git      RunGitCmd   `cmd:"" help:"Run a git command in every imported repository."`

	Config struct {
		Set  ConfigSetCmd  `cmd:"" help:"Set configuration parameters."`
		Get  ConfigGetCmd  `cmd:"" help:"Show configuration parameters."`
		List ConfigListCmd `cmd:"" help:"List all configuration parameters."`
	} `cmd:""`
}

type context struct {
	ws *workspace.Workspace
}

func main() {
	ctx := kong.Parse(&cli,
		kong.ShortUsageOnError(),
		kong.Configuration(kong.JSON, "~/.relnotes/config.json", "./.relnotes/config.json"),
	)

	ws, err := workspace.NewWorkspace(cli.Workspace)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&context{
		ws: ws,
	})
	_ = ws.Close()
	ctx.FatalIfErrorf(err)
}
