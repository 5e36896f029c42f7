package markdown

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/content"
	blockmeta "github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

func TestParseFrontMatterProjectsYAML(t *testing.T) {
	source := testsupport.MustFixture(t, "testdata/posts/hello.md")
	meta, body, skipped, err := ParseFrontMatter([]byte(source))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := meta.String(blockmeta.KeyTitle); got != "Hello World" {
		t.Fatalf("expected title, got %q", got)
	}
	if got := meta.String(blockmeta.KeyDate); got != "2024-03-15" {
		t.Fatalf("expected date, got %q", got)
	}
	if tags := meta.Strings(blockmeta.KeyTags); !slices.Equal(tags, []string{"go", "mdx"}) {
		t.Fatalf("expected tags, got %v", tags)
	}
	if got := meta.String("draft"); got != "false" {
		t.Fatalf("expected draft flag as text, got %q", got)
	}
	if !slices.Equal(skipped, []string{"seo"}) {
		t.Fatalf("expected nested mapping to be skipped, got %v", skipped)
	}
	if !strings.Contains(string(body), "Imported body.") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLoadDirectoryDerivesSlugs(t *testing.T) {
	store := content.NewMemoryStore()
	svc, err := NewService(Config{BasePath: "testdata", Recursive: true}, store, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	sources, err := svc.loader.LoadDirectory(context.Background(), "posts")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var slugs []string
	for _, source := range sources {
		slugs = append(slugs, source.Slug)
	}
	if want := []string{"2024", "hello", "notes/plain"}; !slices.Equal(slugs, want) {
		t.Fatalf("expected slugs %v, got %v", want, slugs)
	}

	flat := NewLoader(svc.loader.fs, LoaderConfig{})
	sources, err = flat.LoadDirectory(context.Background(), "posts")
	if err != nil {
		t.Fatalf("load flat: %v", err)
	}
	if len(sources) != 1 || sources[0].Slug != "hello" {
		t.Fatalf("expected only top-level file without recursion, got %d", len(sources))
	}
}

func TestImportDirectoryCreatesThenSkipsOrUpdates(t *testing.T) {
	ctx := context.Background()
	store := content.NewMemoryStore()
	svc, err := NewService(Config{BasePath: "testdata", Recursive: true}, store, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.ImportDirectory(ctx, "posts", ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected three created posts, got %+v", result)
	}

	doc, err := store.FetchBySlug(ctx, "hello")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	meta, body := blockmeta.Split(doc.Raw)
	if meta.String(blockmeta.KeyTitle) != "Hello World" || !strings.Contains(body, "Imported body.") {
		t.Fatalf("expected imported blob to split back, got %q", doc.Raw)
	}
	if !strings.HasPrefix(doc.Raw, "---\ntitle: \"Hello World\"\n") {
		t.Fatalf("expected block-formatted metadata, got %q", doc.Raw)
	}

	plain, err := store.FetchBySlug(ctx, "notes/plain")
	if err != nil {
		t.Fatalf("fetch plain: %v", err)
	}
	if strings.HasPrefix(plain.Raw, blockmeta.Marker) {
		t.Fatalf("expected file without metadata to import body only, got %q", plain.Raw)
	}

	again, err := svc.ImportDirectory(ctx, "posts", ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(again.Skipped) != 3 || len(again.Created) != 0 {
		t.Fatalf("expected everything skipped, got %+v", again)
	}

	if _, err := store.Save(ctx, content.SaveRequest{Slug: "hello", Raw: "edited"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	dry, err := svc.ImportDirectory(ctx, "posts", ImportOptions{DryRun: true, UpdateExisting: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !slices.Equal(dry.Updated, []string{"hello"}) {
		t.Fatalf("expected dry run to report hello as updated, got %+v", dry)
	}
	if doc, _ := store.FetchBySlug(ctx, "hello"); doc.Raw != "edited" {
		t.Fatalf("dry run must not save")
	}

	updated, err := svc.ImportDirectory(ctx, "posts", ImportOptions{UpdateExisting: true})
	if err != nil {
		t.Fatalf("update import: %v", err)
	}
	if !slices.Equal(updated.Updated, []string{"hello"}) || len(updated.Skipped) != 2 {
		t.Fatalf("expected only hello to update, got %+v", updated)
	}
}

func TestImporterRequiresStore(t *testing.T) {
	_, err := NewImporter(nil, nil).ImportSources(context.Background(), nil, ImportOptions{})
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
	if _, err := NewService(Config{}, content.NewMemoryStore(), nil); !errors.Is(err, ErrBasePathRequired) {
		t.Fatalf("expected ErrBasePathRequired, got %v", err)
	}
}
