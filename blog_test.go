package blog_test

import (
	"context"
	"errors"
	"io"
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/render"
)

func newModule(t *testing.T) *blog.Module {
	t.Helper()
	cfg := blog.DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Auth.Secret = "module-secret"

	module, err := blog.New(context.Background(), cfg,
		di.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})),
	)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleRendersSavedPost(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	_, err := module.Content().Save(ctx, content.SaveRequest{
		Slug: "facade",
		Raw:  "---\ntitle: Facade\n---\n## Section\n\nText.\n",
		Mode: content.ModeCreate,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := module.Render(ctx, "facade")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.State != render.StateRendered {
		t.Fatalf("expected rendered, got %s", res.State)
	}
	if len(res.Headings) != 1 || res.Headings[0].Slug != "section" {
		t.Fatalf("unexpected headings %+v", res.Headings)
	}
}

func TestModuleRenderMissingPost(t *testing.T) {
	module := newModule(t)

	res, err := module.Render(context.Background(), "nope")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.State != render.StateNotFound {
		t.Fatalf("expected not found, got %s", res.State)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := blog.DefaultConfig()
	cfg.Storage.Driver = "mongo"
	cfg.Auth.Secret = "x"

	_, err := blog.New(context.Background(), cfg)
	if !errors.Is(err, blog.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestModuleIssueToken(t *testing.T) {
	module := newModule(t)

	token, err := module.IssueToken(blog.Subject{ID: "1", Role: "admin"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := module.Container().Authenticator().Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected admin role, got %q", claims.Role)
	}
}

func TestModuleOverwriteDropsRemovedMetadata(t *testing.T) {
	cfg := blog.DefaultConfig()
	cfg.Storage.DSN = "file:module_overwrite?mode=memory&cache=shared"
	cfg.Auth.Secret = "module-secret"

	module, err := blog.New(context.Background(), cfg,
		di.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})),
	)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	ctx := context.Background()

	saves := []string{
		"---\ntitle: Old\ntags: [go]\ndescription: old excerpt\n---\nBody.\n",
		"---\ntitle: Old\n---\nBody.\n",
	}
	for _, raw := range saves {
		if _, err := module.Content().Save(ctx, content.SaveRequest{Slug: "p", Raw: raw}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	res, err := module.Render(ctx, "p")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.State != render.StateRendered {
		t.Fatalf("expected rendered, got %s", res.State)
	}
	if len(res.Metadata.Tags) != 0 || res.Metadata.Excerpt != "" {
		t.Fatalf("expected removed tags and excerpt to be gone, got tags=%v excerpt=%q", res.Metadata.Tags, res.Metadata.Excerpt)
	}
}
