package main

import (
	"context"
	"fmt"

	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-command/dispatcher"
)

// ImportCmd imports every markdown file under a content root.
type ImportCmd struct {
	ContentDir string `arg:"" optional:"" name:"content-dir" help:"Content root, overrides BLOG_CONTENT_DIR"`
	Directory  string `help:"Directory to import, relative to the content root" default:"."`
	DryRun     bool   `name:"dry-run" help:"Classify files without saving"`
	Update     bool   `help:"Overwrite posts whose slug already exists"`
}

func (i *ImportCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.config(g)
	if err != nil {
		return err
	}
	if i.ContentDir != "" {
		cfg.Markdown.ContentDir = i.ContentDir
	}

	ctx := context.Background()
	container, err := g.container(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	var summary *markdown.ImportResult
	cmds, err := container.CommandHandlers(nil, di.CommandHooks{
		Import: func(_ markdowncmd.ImportDirectoryCommand, res *markdown.ImportResult) { summary = res },
	})
	if err != nil {
		return err
	}
	unsubscribe := di.SubscribeCommands(cmds, 0)
	defer unsubscribe()

	err = dispatcher.Dispatch(ctx, markdowncmd.ImportDirectoryCommand{
		Directory:      i.Directory,
		DryRun:         i.DryRun,
		UpdateExisting: i.Update,
	})
	if summary != nil {
		fmt.Fprintf(g.Out, "created=%d updated=%d skipped=%d errors=%d dry_run=%t\n",
			len(summary.Created), len(summary.Updated), len(summary.Skipped), len(summary.Errors), summary.DryRun)
	}
	return err
}
