package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-blog/internal/admin"
	postscmd "github.com/goliatone/go-blog/internal/commands/posts"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-command/dispatcher"
)

// SaveCmd saves one MDX file through the editor.
type SaveCmd struct {
	File   string `arg:"" help:"MDX file to save, - for stdin"`
	Slug   string `required:"" help:"Post slug"`
	Create bool   `help:"Fail when the slug already exists"`
}

func (s *SaveCmd) Run(g *Global, root *CLI) error {
	raw, err := s.read()
	if err != nil {
		return err
	}
	cfg, err := root.config(g)
	if err != nil {
		return err
	}

	ctx := context.Background()
	container, err := g.container(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	var saved *admin.SaveResult
	cmds, err := container.CommandHandlers(nil, di.CommandHooks{
		Save: func(_ postscmd.SavePostCommand, res *admin.SaveResult) { saved = res },
	})
	if err != nil {
		return err
	}
	unsubscribe := di.SubscribeCommands(cmds, 0)
	defer unsubscribe()

	parsed := frontmatter.Parse(raw)
	mode := "overwrite"
	if s.Create {
		mode = "create"
	}
	if err := dispatcher.Dispatch(ctx, postscmd.SavePostCommand{
		Slug:        s.Slug,
		Frontmatter: parsed.Frontmatter,
		Body:        parsed.Body,
		Mode:        mode,
	}); err != nil {
		return err
	}
	if saved != nil {
		fmt.Fprintln(g.Out, saved.Redirect)
	}
	return nil
}

func (s *SaveCmd) read() (string, error) {
	if s.File == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(s.File)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
