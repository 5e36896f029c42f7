package di_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	postscmd "github.com/goliatone/go-blog/internal/commands/posts"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/remote"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/testsupport"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/prometheus/client_golang/prometheus"
)

func memoryConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Driver = runtimeconfig.DriverMemory
	cfg.Storage.DSN = ""
	cfg.Auth.Secret = "container-secret"
	return cfg
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	opts = append([]di.Option{di.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard}))}, opts...)
	container, err := di.NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return container
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Auth.Secret = ""

	_, err := di.NewContainer(context.Background(), cfg)
	if !errors.Is(err, runtimeconfig.ErrAuthSecretRequired) {
		t.Fatalf("expected ErrAuthSecretRequired, got %v", err)
	}
}

func TestContainerMemoryWiring(t *testing.T) {
	container := newContainer(t, memoryConfig())

	if container.DB() != nil {
		t.Fatalf("memory storage should not open a database")
	}
	if _, ok := container.ContentStore().(*posts.DocumentStore); !ok {
		t.Fatalf("expected posts document store, got %T", container.ContentStore())
	}
	if container.Authenticator() == nil {
		t.Fatalf("expected authenticator when auth is enabled")
	}

	ctx := context.Background()
	_, err := container.ContentStore().Save(ctx, content.SaveRequest{
		Slug: "hello-world",
		Raw:  "---\ntitle: Hello World\nlayout: simple\n---\n# Intro\n\nFirst post.\n",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := container.Renderer().Render(ctx, "hello-world")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.State != render.StateRendered {
		t.Fatalf("expected rendered state, got %s", res.State)
	}
	if res.Metadata.Path != "blog/hello-world" {
		t.Fatalf("expected canonical path, got %q", res.Metadata.Path)
	}
}

func TestContainerHTTPHandlerServesReaderAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	container := newContainer(t, memoryConfig(), di.WithPrometheusRegistry(registry))

	token, err := container.IssueToken(auth.Subject{ID: "1", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	handler, err := container.HTTPHandler()
	if err != nil {
		t.Fatalf("http handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	body := `{"slug":"wired","content":"---\ntitle: Wired\n---\nBody text.\n","mode":"create"}`
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/mdx", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("save request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	page := get(t, server, "/blog/wired")
	if !strings.Contains(page, "<title>Wired</title>") {
		t.Fatalf("expected rendered title, got %s", page)
	}

	scrape := get(t, server, "/metrics")
	if !strings.Contains(scrape, `blog_http_request_duration_seconds_count{code="200",route="GET /blog/{slug...}"}`) {
		t.Fatalf("expected reader route metric, got %s", scrape)
	}
}

func get(t *testing.T, server *httptest.Server, path string) string {
	t.Helper()
	resp, err := server.Client().Get(server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d: %s", path, resp.StatusCode, data)
	}
	return string(data)
}

func TestContainerAuthDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.Auth.Enabled = false
	cfg.Auth.Secret = ""
	container := newContainer(t, cfg)

	if container.Authenticator() != nil {
		t.Fatalf("expected nil authenticator")
	}
	if _, err := container.IssueToken(auth.Subject{ID: "1"}); !errors.Is(err, di.ErrAuthDisabled) {
		t.Fatalf("expected ErrAuthDisabled, got %v", err)
	}
}

func TestContainerSQLiteWithCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Secret = "container-secret"
	cfg.Storage.AutoMigrate = true
	cfg.Cache.Enabled = true
	db := testsupport.NewBunDB(t)

	container := newContainer(t, cfg, di.WithBunDB(db))
	if container.DB() != db {
		t.Fatalf("expected supplied database")
	}

	ctx := context.Background()
	created, err := container.PostService().Create(ctx, posts.CreatePostRequest{
		Title:   "Stored",
		Slug:    "stored",
		Content: "# Stored\n\nFrom sqlite.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := container.ContentStore().FetchBySlug(ctx, "stored")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.ID != created.ID.String() {
		t.Fatalf("expected id %s, got %s", created.ID, doc.ID)
	}

	// Close leaves a supplied database open.
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("supplied db closed: %v", err)
	}
}

func TestContainerOpensSQLiteFromDSN(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.Secret = "container-secret"
	cfg.Storage.DSN = "file:di_dsn?mode=memory&cache=shared"
	cfg.Storage.AutoMigrate = true

	container := newContainer(t, cfg)
	if container.DB() == nil {
		t.Fatalf("expected opened database")
	}
	if _, err := container.PostService().List(context.Background(), posts.ListOptions{}); err != nil {
		t.Fatalf("list after migrate: %v", err)
	}
}

func TestContainerRemoteSource(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.Close)

	cfg := memoryConfig()
	cfg.Content.Source = runtimeconfig.SourceRemote
	cfg.Remote.BaseURL = upstream.URL
	container := newContainer(t, cfg, di.WithHTTPClient(upstream.Client()))

	if _, ok := container.ContentStore().(*remote.Client); !ok {
		t.Fatalf("expected remote client, got %T", container.ContentStore())
	}
	res, err := container.Renderer().Render(context.Background(), "missing")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.State != render.StateNotFound {
		t.Fatalf("expected not found, got %s", res.State)
	}
}

func TestContainerCommandHandlers(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "imported.md"), []byte("---\ntitle: Imported\n---\nHello.\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := memoryConfig()
	cfg.Markdown.ContentDir = dir
	container := newContainer(t, cfg)

	var saved *admin.SaveResult
	var imported *markdown.ImportResult
	cmds, err := container.CommandHandlers(nil, di.CommandHooks{
		Save:   func(_ postscmd.SavePostCommand, res *admin.SaveResult) { saved = res },
		Import: func(_ markdowncmd.ImportDirectoryCommand, res *markdown.ImportResult) { imported = res },
	})
	if err != nil {
		t.Fatalf("command handlers: %v", err)
	}

	ctx := context.Background()
	err = cmds.SavePost.Execute(ctx, postscmd.SavePostCommand{
		Slug:        "From Command",
		Frontmatter: frontmatter.Frontmatter{frontmatter.KeyTitle: frontmatter.Scalar("From Command")},
		Body:        "Saved through a command.",
	})
	if err != nil {
		t.Fatalf("save command: %v", err)
	}
	if saved == nil || saved.Slug != "from-command" {
		t.Fatalf("unexpected save result %+v", saved)
	}

	if err := cmds.ImportDirectory.Execute(ctx, markdowncmd.ImportDirectoryCommand{Directory: "."}); err != nil {
		t.Fatalf("import command: %v", err)
	}
	if imported == nil || len(imported.Created) != 1 || imported.Created[0] != "imported" {
		t.Fatalf("unexpected import result %+v", imported)
	}
	if _, err := container.ContentStore().FetchBySlug(ctx, "imported"); err != nil {
		t.Fatalf("fetch imported: %v", err)
	}
}

func TestContainerImportFailsForMissingDirectory(t *testing.T) {
	cfg := memoryConfig()
	cfg.Markdown.ContentDir = filepath.Join(t.TempDir(), "absent")
	container := newContainer(t, cfg)

	cmds, err := container.CommandHandlers(nil, di.CommandHooks{})
	if err != nil {
		t.Fatalf("handlers should build without the directory: %v", err)
	}
	if err := cmds.ImportDirectory.Execute(context.Background(), markdowncmd.ImportDirectoryCommand{Directory: "."}); err == nil {
		t.Fatalf("expected error for missing content directory")
	}
}

func TestSubscribeCommandsDispatchesSave(t *testing.T) {
	registry := prometheus.NewRegistry()
	container := newContainer(t, memoryConfig(), di.WithPrometheusRegistry(registry))

	cmds, err := container.CommandHandlers(nil, di.CommandHooks{})
	if err != nil {
		t.Fatalf("command handlers: %v", err)
	}
	unsubscribe := di.SubscribeCommands(cmds, 0)
	t.Cleanup(unsubscribe)

	ctx := context.Background()
	err = dispatcher.Dispatch(ctx, postscmd.SavePostCommand{
		Slug: "dispatched",
		Body: "Sent through the dispatcher.",
		Mode: "create",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := container.ContentStore().FetchBySlug(ctx, "dispatched"); err != nil {
		t.Fatalf("fetch dispatched: %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var observed bool
	for _, family := range families {
		if family.GetName() == "blog_command_duration_seconds" {
			observed = true
		}
	}
	if !observed {
		t.Fatalf("expected command duration to be recorded")
	}
}
