package links

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/content"
)

func TestPostURLKeepsNestedSlug(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	url, err := b.Post("/2024/hello/")
	if err != nil {
		t.Fatalf("post url: %v", err)
	}
	if !strings.HasSuffix(url, "/blog/2024/hello") {
		t.Fatalf("expected canonical read url, got %q", url)
	}
}

func TestEditURLUsesAdminMount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://blog.example.com/"
	b := NewBuilder(cfg)
	url, err := b.Edit("hello")
	if err != nil {
		t.Fatalf("edit url: %v", err)
	}
	if !strings.HasPrefix(url, "https://blog.example.com") || !strings.HasSuffix(url, "/admin/edit/hello") {
		t.Fatalf("unexpected edit url %q", url)
	}
}

func TestEmptySlugIsRejected(t *testing.T) {
	if _, err := NewBuilder(DefaultConfig()).Post(" / "); !errors.Is(err, content.ErrEmptySlug) {
		t.Fatalf("expected ErrEmptySlug, got %v", err)
	}
}
