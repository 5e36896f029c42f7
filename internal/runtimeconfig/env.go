package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every variable read by FromEnv.
const EnvPrefix = "BLOG_"

// LoadDotEnv loads the given files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("blog config: load %s: %w", file, err)
		}
	}
	return nil
}

// FromEnv overlays BLOG_* variables onto cfg using lookup (os.LookupEnv when nil).
func FromEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}

	env.str("ADDR", &cfg.Server.Addr)
	env.str("BASE_URL", &cfg.Server.BaseURL)
	env.str("READER_PATH", &cfg.Server.ReaderPath)
	env.str("ADMIN_PATH", &cfg.Server.AdminPath)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	env.str("DB_DRIVER", &cfg.Storage.Driver)
	env.str("DB_DSN", &cfg.Storage.DSN)
	env.boolean("DB_AUTO_MIGRATE", &cfg.Storage.AutoMigrate)

	env.boolean("CACHE_ENABLED", &cfg.Cache.Enabled)
	env.duration("CACHE_TTL", &cfg.Cache.TTL)

	env.str("CONTENT_SOURCE", &cfg.Content.Source)
	env.boolean("PUBLISHED_ONLY", &cfg.Content.PublishedOnly)

	env.str("REMOTE_URL", &cfg.Remote.BaseURL)
	env.str("REMOTE_TOKEN", &cfg.Remote.Token)
	env.duration("REMOTE_TIMEOUT", &cfg.Remote.Timeout)

	env.str("PATH_PREFIX", &cfg.Render.PathPrefix)
	env.str("DEFAULT_LAYOUT", &cfg.Render.DefaultLayout)
	env.boolean("SANITIZE", &cfg.Render.Sanitize)
	env.boolean("DEBUG", &cfg.Render.Debug)

	env.boolean("AUTH_ENABLED", &cfg.Auth.Enabled)
	env.str("JWT_SECRET", &cfg.Auth.Secret)
	env.str("JWT_ISSUER", &cfg.Auth.Issuer)
	env.duration("JWT_TTL", &cfg.Auth.TokenTTL)

	env.str("CONTENT_DIR", &cfg.Markdown.ContentDir)
	env.list("CONTENT_PATTERNS", &cfg.Markdown.Patterns)
	env.boolean("CONTENT_RECURSIVE", &cfg.Markdown.Recursive)

	env.boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)

	env.str("LOG_PROVIDER", &cfg.Logging.Provider)
	env.str("LOG_LEVEL", &cfg.Logging.Level)
	env.str("LOG_FORMAT", &cfg.Logging.Format)
	env.boolean("LOG_ADD_SOURCE", &cfg.Logging.AddSource)
	env.list("LOG_FOCUS", &cfg.Logging.Focus)

	return cfg, errors.Join(env.errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(name string) (string, bool) {
	value, ok := e.lookup(EnvPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (e *envReader) str(name string, target *string) {
	if value, ok := e.get(name); ok {
		*target = value
	}
}

func (e *envReader) list(name string, target *[]string) {
	value, ok := e.get(name)
	if !ok {
		return
	}
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*target = items
}

func (e *envReader) boolean(name string, target *bool) {
	value, ok := e.get(name)
	if !ok || value == "" {
		return
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("blog config: %s%s: %w", EnvPrefix, name, err))
		return
	}
	*target = parsed
}

func (e *envReader) duration(name string, target *time.Duration) {
	value, ok := e.get(name)
	if !ok || value == "" {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("blog config: %s%s: %w", EnvPrefix, name, err))
		return
	}
	*target = parsed
}
