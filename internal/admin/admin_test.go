package admin

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/links"
)

func newTestService(t *testing.T, seed ...content.Document) (*Service, *content.MemoryStore) {
	t.Helper()
	store := content.NewMemoryStore(seed...)
	return NewService(store, links.NewBuilder(links.DefaultConfig())), store
}

func sampleDraft() Draft {
	fm := frontmatter.Frontmatter{}
	fm.Set(frontmatter.KeyTitle, frontmatter.Scalar("Hello"))
	fm.Set(frontmatter.KeyTags, frontmatter.List("go", "mdx"))
	fm.Set("series", frontmatter.Scalar("intro"))
	return Draft{Slug: "2024/hello", Frontmatter: fm, Body: "# Hello\n\nText\n"}
}

func TestSaveRedirectsToCanonicalURL(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	result, err := svc.Save(ctx, SaveRequest{Draft: sampleDraft(), Mode: content.ModeCreate})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(result.Redirect, "/blog/2024/hello") {
		t.Fatalf("unexpected redirect %q", result.Redirect)
	}

	doc, err := store.FetchBySlug(ctx, "2024/hello")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := "---\ntitle: \"Hello\"\ntags: [\"go\", \"mdx\"]\nseries: \"intro\"\n---\n# Hello\n\nText\n"
	if doc.Raw != want {
		t.Fatalf("unexpected stored blob:\n%s", doc.Raw)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	draft := sampleDraft()

	if _, err := svc.Save(ctx, SaveRequest{Draft: draft}); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := svc.Load(ctx, draft.Slug)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Warning != "" {
		t.Fatalf("unexpected warning %q", loaded.Warning)
	}
	if !reflect.DeepEqual(loaded.Draft, draft) {
		t.Fatalf("expected round trip\nwant %#v\ngot  %#v", draft, loaded.Draft)
	}
}

func TestSaveConflictPreservesDraft(t *testing.T) {
	svc, _ := newTestService(t, content.Document{Slug: "2024/hello", Raw: "existing"})
	draft := sampleDraft()

	_, err := svc.Save(context.Background(), SaveRequest{Draft: draft, Mode: content.ModeCreate})
	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("expected SaveError, got %v", err)
	}
	if !errors.Is(err, content.ErrConflict) {
		t.Fatalf("expected conflict to be wrapped, got %v", err)
	}
	if !reflect.DeepEqual(saveErr.Draft, draft) {
		t.Fatalf("expected draft to be handed back unchanged")
	}

	saveErr.Draft.Frontmatter.Set(frontmatter.KeyTitle, frontmatter.Scalar("mutated"))
	if draft.Frontmatter.String(frontmatter.KeyTitle) != "Hello" {
		t.Fatalf("expected returned draft to be a copy")
	}
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty := sampleDraft()
	empty.Slug = " "
	if _, err := svc.Save(ctx, SaveRequest{Draft: empty}); !errors.Is(err, content.ErrEmptySlug) {
		t.Fatalf("expected ErrEmptySlug, got %v", err)
	}

	badKey := sampleDraft()
	badKey.Frontmatter.Set("bad key", frontmatter.Scalar("x"))
	if _, err := svc.Save(ctx, SaveRequest{Draft: badKey}); !errors.Is(err, frontmatter.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestLoadReportsMalformedMetadata(t *testing.T) {
	svc, _ := newTestService(t, content.Document{Slug: "broken", Raw: "---\ntitle: \"ok\"\nnested: {a: 1}\n---\nbody"})
	loaded, err := svc.Load(context.Background(), "broken")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Warning == "" {
		t.Fatalf("expected a warning for the malformed block")
	}
	if loaded.Draft.Frontmatter.String(frontmatter.KeyTitle) != "ok" {
		t.Fatalf("expected keys before the bad line to survive")
	}
	if !strings.Contains(loaded.Draft.Body, "nested: {a: 1}") {
		t.Fatalf("expected unparsed remainder in body, got %q", loaded.Draft.Body)
	}
}

func TestLoadMissingPost(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Load(context.Background(), "nope"); !content.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPreviewRendersFragmentOnCompileError(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ok, err := svc.Preview(ctx, Draft{Body: "## Intro\n\n<Callout type=\"info\">Hi</Callout>\n"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if ok.Error != "" || !strings.Contains(string(ok.HTML), `id="intro"`) {
		t.Fatalf("unexpected preview %+v", ok)
	}
	if len(ok.Headings) != 1 || ok.Headings[0].Slug != "intro" {
		t.Fatalf("unexpected headings %+v", ok.Headings)
	}

	broken, err := svc.Preview(ctx, Draft{Body: "<Missing />\n"})
	if err != nil {
		t.Fatalf("expected compile failure to be reported inline, got %v", err)
	}
	if broken.Error != PreviewCompileFailed || !strings.Contains(string(broken.HTML), "mdx-error") {
		t.Fatalf("expected error fragment, got %+v", broken)
	}
	if strings.Contains(broken.Error, "Missing") {
		t.Fatalf("expected compile detail to stay hidden, got %q", broken.Error)
	}
}

func TestPreviewShowsCompileDetailInDebug(t *testing.T) {
	svc := NewService(content.NewMemoryStore(), links.NewBuilder(links.DefaultConfig()), WithDebug(true))

	broken, err := svc.Preview(context.Background(), Draft{Body: "<Missing />\n"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(broken.Error, "Missing") {
		t.Fatalf("expected compile detail in debug mode, got %q", broken.Error)
	}
}
