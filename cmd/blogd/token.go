package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
)

// TokenCmd signs a bearer token with BLOG_JWT_SECRET.
type TokenCmd struct {
	Subject string `arg:"" help:"Subject id"`
	Email   string `help:"Email claim"`
	Role    string `help:"Role claim" default:"admin"`
}

func (t *TokenCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.config(g)
	if err != nil {
		return err
	}
	cfg.Storage.Driver = runtimeconfig.DriverMemory
	cfg.Cache.Enabled = false

	container, err := g.container(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	token, err := container.IssueToken(auth.Subject{ID: t.Subject, Email: t.Email, Role: t.Role})
	if err != nil {
		return err
	}
	fmt.Fprintln(g.Out, token)
	return nil
}
