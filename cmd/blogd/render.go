package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-blog/internal/render"
)

// RenderCmd renders a post through the pipeline.
type RenderCmd struct {
	Slug string `arg:"" help:"Post slug"`
	JSON bool   `name:"json" help:"Print the full render result as JSON"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
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

	res, err := container.Renderer().Render(ctx, r.Slug)
	if err != nil {
		return err
	}
	if r.JSON {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	switch res.State {
	case render.StateNotFound:
		return fmt.Errorf("post %q not found", r.Slug)
	case render.StateRenderError:
		fmt.Fprintln(g.Out, res.Fragment)
		return res.Err
	}
	fmt.Fprintln(g.Out, res.Body)
	return nil
}
