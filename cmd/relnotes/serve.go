package main

type ServeCmd struct {
	Port uint `help:"Port to listen to. Default comes from the server.port config or 2428."`
}

func (c *ServeCmd) Run(ctx *context) error {
	return ctx.ws.Serve(c.Port)
}
