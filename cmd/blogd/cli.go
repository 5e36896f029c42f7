package main

import (
	"context"
	"io"

	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Global carries process state shared by every subcommand.
type Global struct {
	Out      io.Writer
	Lookup   func(string) (string, bool)
	Provider interfaces.LoggerProvider
}

// CLI is the root command tree.
type CLI struct {
	EnvFile  []string `name:"env-file" sep:"," help:"Dotenv files loaded before reading BLOG_* variables (default .env,.env.local)"`
	LogLevel string   `name:"log-level" help:"Overrides BLOG_LOG_LEVEL"`

	Serve  ServeCmd  `cmd:"" help:"Run the HTTP reader, editor and REST API"`
	Import ImportCmd `cmd:"" help:"Import a directory of markdown files"`
	Save   SaveCmd   `cmd:"" help:"Save an MDX file as a post"`
	Render RenderCmd `cmd:"" help:"Render a post to stdout"`
	Token  TokenCmd  `cmd:"" help:"Issue a bearer token"`
}

func (c *CLI) config(g *Global) (runtimeconfig.Config, error) {
	if err := runtimeconfig.LoadDotEnv(c.EnvFile...); err != nil {
		return runtimeconfig.Config{}, err
	}
	lookup := g.Lookup
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	cfg, err := runtimeconfig.FromEnv(runtimeconfig.DefaultConfig(), lookup)
	if err != nil {
		return cfg, err
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
	return cfg, nil
}

func (g *Global) container(ctx context.Context, cfg runtimeconfig.Config) (*di.Container, error) {
	var opts []di.Option
	if g.Provider != nil {
		opts = append(opts, di.WithLoggerProvider(g.Provider))
	}
	return di.NewContainer(ctx, cfg, opts...)
}
