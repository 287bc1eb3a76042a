package main

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/relnotes/lib/workspace"
)

type ConfigSetCmd struct {
	Config string `arg:"" help:"Configuration name to change."`
	Value  string `arg:"" optional:"" help:"Configuration value to set. Empty removes it."`
}

func (c *ConfigSetCmd) Run(ctx *context) error {
	if !lo.Contains(workspace.KnownConfigs, c.Config) {
		return errors.Errorf("unknown config %v (known: %v)", c.Config, workspace.KnownConfigs)
	}

	changed, err := ctx.ws.SetGlobalConfig(c.Config, c.Value)
	if err != nil {
		return err
	}

	if changed {
		ctx.ws.Console().Printf("Set '%v' = '%v'\n", c.Config, c.Value)
	}

	return nil
}

type ConfigGetCmd struct {
	Config string `arg:"" help:"Configuration name to show."`
}

func (c *ConfigGetCmd) Run(ctx *context) error {
	v, ok, err := ctx.ws.GetGlobalConfig(c.Config)
	if err != nil {
		return err
	}

	if !ok {
		return errors.Errorf("config %v is not set", c.Config)
	}

	ctx.ws.Console().Printf("%v\n", v)

	return nil
}

type ConfigListCmd struct {
}

func (c *ConfigListCmd) Run(ctx *context) error {
	cfg, err := ctx.ws.ListGlobalConfig()
	if err != nil {
		return err
	}

	for _, kv := range cfg {
		ctx.ws.Console().Printf("%v = %v\n", kv[0], kv[1])
	}

	return nil
}
