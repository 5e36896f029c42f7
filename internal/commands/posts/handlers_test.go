package postscmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/links"
	goerrors "github.com/goliatone/go-errors"
)

func newSaver(seed ...content.Document) (*admin.Service, *content.MemoryStore) {
	store := content.NewMemoryStore(seed...)
	return admin.NewService(store, links.NewBuilder(links.DefaultConfig())), store
}

func TestSavePostCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     SavePostCommand
		wantErr bool
	}{
		{name: "valid", cmd: SavePostCommand{Slug: "hello", Body: "x"}},
		{name: "missing slug", cmd: SavePostCommand{Body: "x"}, wantErr: true},
		{name: "punctuation slug", cmd: SavePostCommand{Slug: "!!!"}, wantErr: true},
		{name: "bad mode", cmd: SavePostCommand{Slug: "hello", Mode: "append"}, wantErr: true},
		{name: "bad key", cmd: SavePostCommand{Slug: "hello", Frontmatter: frontmatter.Frontmatter{"bad key": frontmatter.Scalar("v")}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSavePostHandlerNormalizesSlugAndSaves(t *testing.T) {
	saver, store := newSaver()
	var got *admin.SaveResult
	handler := NewSavePostHandler(saver, nil, func(_ SavePostCommand, result *admin.SaveResult) {
		got = result
	})

	fm := frontmatter.Frontmatter{}
	fm.Set(frontmatter.KeyTitle, frontmatter.Scalar("Hello World"))
	err := handler.Execute(context.Background(), SavePostCommand{
		Slug:        "  Hello World ",
		Frontmatter: fm,
		Body:        "# Hello\n",
		Mode:        "create",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.Slug != "hello-world" {
		t.Fatalf("expected normalized slug, got %+v", got)
	}
	if !strings.HasSuffix(got.Redirect, "/blog/hello-world") {
		t.Fatalf("unexpected redirect %q", got.Redirect)
	}
	doc, err := store.FetchBySlug(context.Background(), "hello-world")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasPrefix(doc.Raw, "---\ntitle: \"Hello World\"\n---\n") {
		t.Fatalf("unexpected blob %q", doc.Raw)
	}
}

func TestSavePostHandlerConflictKeepsSaveError(t *testing.T) {
	saver, _ := newSaver(content.Document{Slug: "taken", Raw: "old"})
	handler := NewSavePostHandler(saver, nil, nil)

	err := handler.Execute(context.Background(), SavePostCommand{Slug: "taken", Body: "new", Mode: "create"})
	if !errors.Is(err, content.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var saveErr *admin.SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected SaveError in chain, got %v", err)
	}
	if saveErr.Draft.Body != "new" {
		t.Fatalf("expected draft preserved, got %+v", saveErr.Draft)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestSavePostHandlerValidationFailure(t *testing.T) {
	saver, _ := newSaver()
	handler := NewSavePostHandler(saver, nil, nil)

	err := handler.Execute(context.Background(), SavePostCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestRegisterPostCommandsRequiresSaver(t *testing.T) {
	if _, err := RegisterPostCommands(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for nil saver")
	}
}
