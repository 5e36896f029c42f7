package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/commands"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	postscmd "github.com/goliatone/go-blog/internal/commands/posts"
	"github.com/goliatone/go-blog/internal/content"
	bloghttp "github.com/goliatone/go-blog/internal/http"
	"github.com/goliatone/go-blog/internal/layouts"
	"github.com/goliatone/go-blog/internal/links"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/mdx"
	"github.com/goliatone/go-blog/internal/metadata"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/remote"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	promRegistry *prometheus.Registry
	recorder     metrics.Recorder

	postRepo     posts.PostRepository
	categoryRepo posts.CategoryRepository
	postSvc      posts.Service
	store        content.Store
	httpClient   *nethttp.Client

	compiler     *mdx.Compiler
	registry     *mdx.Registry
	links        *links.Builder
	orchestrator *render.Orchestrator
	pages        *layouts.Renderer
	editor       *admin.Service
	auth         *auth.Authenticator
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB supplies an open database. The container will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache supplies the repository cache used when Config.Cache is enabled.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithContentStore overrides the store the reader and editor use.
func WithContentStore(store content.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithPrometheusRegistry overrides the registry metrics are registered with.
func WithPrometheusRegistry(registry *prometheus.Registry) Option {
	return func(c *Container) {
		c.promRegistry = registry
	}
}

// WithHTTPClient sets the client used by the remote content store.
func WithHTTPClient(client *nethttp.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func(context.Context) error{
		c.configureLogging,
		c.configureMetrics,
		c.configureStorage,
		c.configureCacheDefaults,
		c.configurePosts,
		c.configureContentStore,
		c.configureRendering,
		c.configureAuth,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Container) configureLogging(context.Context) error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureMetrics(context.Context) error {
	if !c.Config.Metrics.Enabled {
		c.recorder = metrics.NoopRecorder{}
		return nil
	}
	if c.promRegistry == nil {
		c.promRegistry = prometheus.NewRegistry()
	}
	c.recorder = metrics.NewPrometheusRecorder(c.promRegistry)
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil {
		driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
		switch driver {
		case runtimeconfig.DriverMemory:
			return nil
		case runtimeconfig.DriverSQLite:
			sqldb, err := sql.Open("sqlite3", c.Config.Storage.DSN)
			if err != nil {
				return fmt.Errorf("di: open sqlite: %w", err)
			}
			sqldb.SetMaxOpenConns(1)
			c.bunDB = bun.NewDB(sqldb, sqlitedialect.New())
		case runtimeconfig.DriverPostgres:
			sqldb, err := sql.Open("postgres", c.Config.Storage.DSN)
			if err != nil {
				return fmt.Errorf("di: open postgres: %w", err)
			}
			c.bunDB = bun.NewDB(sqldb, pgdialect.New())
		}
		c.ownsDB = true
	}

	if err := c.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("di: ping database: %w", err)
	}
	if c.Config.Storage.AutoMigrate {
		if err := posts.CreateSchema(ctx, c.bunDB); err != nil {
			return fmt.Errorf("di: create schema: %w", err)
		}
	}
	return nil
}

func (c *Container) configureCacheDefaults(context.Context) error {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return nil
	}
	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configurePosts(context.Context) error {
	switch {
	case c.bunDB == nil:
		c.postRepo = posts.NewMemoryPostRepository()
		c.categoryRepo = posts.NewMemoryCategoryRepository()
	case c.cacheService != nil:
		c.postRepo = posts.NewBunPostRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.categoryRepo = posts.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	default:
		c.postRepo = posts.NewBunPostRepository(c.bunDB)
		c.categoryRepo = posts.NewBunCategoryRepository(c.bunDB)
	}
	c.postSvc = posts.NewService(c.postRepo, c.categoryRepo,
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureContentStore(context.Context) error {
	if c.store != nil {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(c.Config.Content.Source), runtimeconfig.SourceRemote) {
		httpClient := c.httpClient
		if httpClient == nil {
			httpClient = &nethttp.Client{Timeout: c.Config.Remote.Timeout}
		}
		client, err := remote.NewClient(c.Config.Remote.BaseURL,
			remote.WithHTTPClient(httpClient),
			remote.WithToken(c.Config.Remote.Token),
			remote.WithLogger(logging.RemoteLogger(c.loggerProvider)),
		)
		if err != nil {
			return err
		}
		c.store = client
		return nil
	}
	c.store = posts.NewDocumentStore(c.postSvc, posts.WithPublishedOnly(c.Config.Content.PublishedOnly))
	return nil
}

func (c *Container) configureRendering(context.Context) error {
	renderLogger := logging.RenderLogger(c.loggerProvider)
	c.compiler = mdx.NewCompiler(
		mdx.WithParseOptions(interfaces.ParseOptions{Sanitize: c.Config.Render.Sanitize}),
		mdx.WithLogger(renderLogger),
	)
	c.registry = mdx.DefaultRegistry()
	c.links = links.NewBuilder(links.Config{
		BaseURL:    c.Config.Server.BaseURL,
		ReaderPath: c.Config.Server.ReaderPath,
		AdminPath:  c.Config.Server.AdminPath,
	})

	normalizer := metadata.NewNormalizer(
		metadata.WithPathPrefix(c.Config.Render.PathPrefix),
		metadata.WithDefaultLayout(c.Config.Render.DefaultLayout),
	)
	c.orchestrator = render.NewOrchestrator(c.store,
		render.WithCompiler(c.compiler),
		render.WithRegistry(c.registry),
		render.WithNormalizer(normalizer),
		render.WithLogger(renderLogger),
		render.WithMetrics(c.recorder),
		render.WithDebug(c.Config.Render.Debug),
	)

	pages, err := layouts.NewRenderer()
	if err != nil {
		return err
	}
	c.pages = pages

	c.editor = admin.NewService(c.store, c.links,
		admin.WithCompiler(c.compiler),
		admin.WithRegistry(c.registry),
		admin.WithLogger(logging.AdminLogger(c.loggerProvider)),
		admin.WithMetrics(c.recorder),
		admin.WithDebug(c.Config.Render.Debug),
	)
	return nil
}

func (c *Container) configureAuth(context.Context) error {
	if !c.Config.Auth.Enabled {
		return nil
	}
	authenticator, err := auth.New(c.Config.Auth.Secret,
		auth.WithTTL(c.Config.Auth.TokenTTL),
		auth.WithIssuer(c.Config.Auth.Issuer),
	)
	if err != nil {
		return err
	}
	c.auth = authenticator
	return nil
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// LoggerProvider returns the provider every module logger derives from.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// DB returns the bun handle, nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// PostService returns the posts and categories service.
func (c *Container) PostService() posts.Service {
	return c.postSvc
}

// ContentStore returns the store the reader and editor share.
func (c *Container) ContentStore() content.Store {
	return c.store
}

// Renderer returns the render pipeline.
func (c *Container) Renderer() *render.Orchestrator {
	return c.orchestrator
}

// Editor returns the admin round-trip service.
func (c *Container) Editor() *admin.Service {
	return c.editor
}

// Authenticator returns the token service, nil when auth is disabled.
func (c *Container) Authenticator() *auth.Authenticator {
	return c.auth
}

// Links returns the canonical URL builder.
func (c *Container) Links() *links.Builder {
	return c.links
}

// Metrics returns the recorder shared by render, admin and http.
func (c *Container) Metrics() metrics.Recorder {
	return c.recorder
}

// HTTPHandler assembles the HTTP surface.
func (c *Container) HTTPHandler() (nethttp.Handler, error) {
	opts := []bloghttp.Option{
		bloghttp.WithReaderPath(c.Config.Server.ReaderPath),
		bloghttp.WithStore(c.store),
		bloghttp.WithPostService(c.postSvc),
		bloghttp.WithRenderer(c.orchestrator, c.pages),
		bloghttp.WithEditor(c.editor),
		bloghttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.auth != nil {
		opts = append(opts, bloghttp.WithAuthenticator(c.auth))
	}
	if c.Config.Metrics.Enabled && c.promRegistry != nil {
		opts = append(opts, bloghttp.WithMetrics(c.recorder, metrics.HTTPHandler(c.promRegistry)))
	}
	return bloghttp.NewAPI(opts...).Handler()
}

// Importer builds a markdown import service rooted at Config.Markdown.ContentDir.
func (c *Container) Importer() (*markdown.Service, error) {
	cfg := c.Config.Markdown
	return markdown.NewService(markdown.Config{
		BasePath:  cfg.ContentDir,
		Patterns:  cfg.Patterns,
		Recursive: cfg.Recursive,
	}, c.store, logging.ImportLogger(c.loggerProvider))
}

// Commands groups the command handlers built by the container.
type Commands struct {
	SavePost        *postscmd.SavePostHandler
	ImportDirectory *markdowncmd.ImportDirectoryHandler
}

// CommandHooks receive command results.
type CommandHooks struct {
	Save   postscmd.ResultHook
	Import markdowncmd.ResultHook
}

// CommandHandlers builds the save and import handlers. reg may be nil.
// The import handler resolves Config.Markdown.ContentDir on each execution.
func (c *Container) CommandHandlers(reg interface{ RegisterCommand(any) error }, hooks CommandHooks) (*Commands, error) {
	saveTelemetry := commands.RecordedTelemetry(c.recorder,
		commands.DefaultTelemetry[postscmd.SavePostCommand](commands.CommandLogger(c.loggerProvider, "posts")))
	save, err := postscmd.RegisterPostCommands(reg, c.editor, c.loggerProvider, hooks.Save,
		commands.WithTelemetry(saveTelemetry))
	if err != nil {
		return nil, err
	}

	importTelemetry := commands.RecordedTelemetry(c.recorder,
		commands.DefaultTelemetry[markdowncmd.ImportDirectoryCommand](commands.CommandLogger(c.loggerProvider, "markdown")))
	set, err := markdowncmd.RegisterMarkdownCommands(reg, importerFunc(c.importDirectory), c.loggerProvider,
		markdowncmd.WithResultHook(hooks.Import),
		markdowncmd.WithImportHandlerOptions(commands.WithTelemetry(importTelemetry)),
	)
	if err != nil {
		return nil, err
	}
	return &Commands{SavePost: save, ImportDirectory: set.Import}, nil
}

// SubscribeCommands registers cmds with the go-command dispatcher and
// returns a func that removes the subscriptions.
func SubscribeCommands(cmds *Commands, retries int) func() {
	if cmds == nil {
		return func() {}
	}
	var unsubscribe []func()
	if retries > 0 {
		unsubscribe = append(unsubscribe,
			dispatcher.SubscribeCommand(cmds.SavePost, runner.WithMaxRetries(retries)).Unsubscribe,
			dispatcher.SubscribeCommand(cmds.ImportDirectory, runner.WithMaxRetries(retries)).Unsubscribe,
		)
	} else {
		unsubscribe = append(unsubscribe,
			dispatcher.SubscribeCommand(cmds.SavePost).Unsubscribe,
			dispatcher.SubscribeCommand(cmds.ImportDirectory).Unsubscribe,
		)
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

type importerFunc func(ctx context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error)

func (f importerFunc) ImportDirectory(ctx context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error) {
	return f(ctx, dir, opts)
}

func (c *Container) importDirectory(ctx context.Context, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error) {
	svc, err := c.Importer()
	if err != nil {
		return nil, err
	}
	return svc.ImportDirectory(ctx, dir, opts)
}

// ErrAuthDisabled is returned by IssueToken when auth is not configured.
var ErrAuthDisabled = errors.New("di: auth is disabled")

// IssueToken signs a token for subject.
func (c *Container) IssueToken(subject auth.Subject) (string, error) {
	if c.auth == nil {
		return "", ErrAuthDisabled
	}
	return c.auth.Issue(subject)
}
