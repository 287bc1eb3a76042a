package main

type AnnotateCmd struct {
	SHA     string `arg:"" help:"Commit hash, or an unique prefix of it."`
	Summary string `arg:"" optional:"" help:"Summary to attach. Empty removes the current one."`
}

func (c *AnnotateCmd) Run(ctx *context) error {
	commit, err := ctx.ws.Annotate(c.SHA, c.Summary)
	if err != nil {
		return err
	}

	if c.Summary == "" {
		ctx.ws.Console().Printf("Removed AI summary of %v\n", commit.Commit().ShortSHA())
	} else {
		ctx.ws.Console().Printf("Annotated %v\n", commit.Commit())
	}

	return nil
}
