package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrStorageDriverUnknown       = errors.New("blog config: storage driver is invalid")
	ErrStorageDSNRequired         = errors.New("blog config: storage dsn is required for sql drivers")
	ErrContentSourceUnknown       = errors.New("blog config: content source is invalid")
	ErrRemoteBaseURLRequired      = errors.New("blog config: remote base url is required when content source is remote")
	ErrRemoteBaseURLInvalid       = errors.New("blog config: remote base url must be absolute")
	ErrCacheRequiresSQLStorage    = errors.New("blog config: repository cache requires a sql storage driver")
	ErrCacheTTLInvalid            = errors.New("blog config: cache ttl must be positive")
	ErrAuthSecretRequired         = errors.New("blog config: auth secret is required when auth is enabled")
	ErrAuthTTLInvalid             = errors.New("blog config: auth token ttl must be positive")
	ErrServerAddrRequired         = errors.New("blog config: server address is required")
	ErrMarkdownContentDirRequired = errors.New("blog config: markdown content directory is required")
	ErrLoggingProviderRequired    = errors.New("blog config: logging provider is required")
	ErrLoggingProviderUnknown     = errors.New("blog config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("blog config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("blog config: logging format is invalid")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	SourceDatabase = "database"
	SourceRemote   = "remote"
)

// Config aggregates the runtime settings of the blog.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Content  ContentConfig
	Remote   RemoteConfig
	Render   RenderConfig
	Auth     AuthConfig
	Markdown MarkdownConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string
	BaseURL         string
	ReaderPath      string
	AdminPath       string
	ShutdownTimeout time.Duration
}

// StorageConfig selects the relational backend for posts.
type StorageConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

// CacheConfig toggles the go-repository-cache decorator on bun repositories.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ContentConfig selects where the render pipeline reads raw posts from.
type ContentConfig struct {
	Source        string
	PublishedOnly bool
}

// RemoteConfig points at a remote content repository.
type RemoteConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RenderConfig tunes the render pipeline.
type RenderConfig struct {
	PathPrefix    string
	DefaultLayout string
	Sanitize      bool
	Debug         bool
}

// AuthConfig configures admin token signing.
type AuthConfig struct {
	Enabled  bool
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// MarkdownConfig configures directory imports.
type MarkdownConfig struct {
	ContentDir string
	Patterns   []string
	Recursive  bool
}

// MetricsConfig toggles the Prometheus recorder and /metrics.
type MetricsConfig struct {
	Enabled bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReaderPath:      "/blog",
			AdminPath:       "/admin",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:      DriverSQLite,
			DSN:         "file:blog.db?cache=shared&_fk=1",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			TTL: time.Minute,
		},
		Content: ContentConfig{
			Source: SourceDatabase,
		},
		Remote: RemoteConfig{
			Timeout: 10 * time.Second,
		},
		Render: RenderConfig{
			PathPrefix:    "blog",
			DefaultLayout: "PostLayout",
		},
		Auth: AuthConfig{
			Enabled:  true,
			Issuer:   "go-blog",
			TokenTTL: 24 * time.Hour,
		},
		Markdown: MarkdownConfig{
			ContentDir: "content",
			Patterns:   []string{"*.md", "*.mdx"},
			Recursive:  true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}

	driver := normalize(cfg.Storage.Driver)
	switch driver {
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled {
		if driver == DriverMemory {
			return ErrCacheRequiresSQLStorage
		}
		if cfg.Cache.TTL <= 0 {
			return ErrCacheTTLInvalid
		}
	}

	switch normalize(cfg.Content.Source) {
	case SourceDatabase:
	case SourceRemote:
		raw := strings.TrimSpace(cfg.Remote.BaseURL)
		if raw == "" {
			return ErrRemoteBaseURLRequired
		}
		if u, err := url.Parse(raw); err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrRemoteBaseURLInvalid, raw)
		}
	default:
		return fmt.Errorf("%w: %q", ErrContentSourceUnknown, cfg.Content.Source)
	}

	if cfg.Auth.Enabled {
		if strings.TrimSpace(cfg.Auth.Secret) == "" {
			return ErrAuthSecretRequired
		}
		if cfg.Auth.TokenTTL <= 0 {
			return ErrAuthTTLInvalid
		}
	}

	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrMarkdownContentDirRequired
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
