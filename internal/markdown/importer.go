package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrStoreRequired    = errors.New("markdown importer: content store is required")
	ErrBasePathRequired = errors.New("markdown importer: base path is required")
)

// ImportOptions control how sources are persisted.
type ImportOptions struct {
	// DryRun classifies every source without saving.
	DryRun bool
	// UpdateExisting overwrites posts whose slug already exists.
	UpdateExisting bool
}

// ImportResult lists slugs by outcome.
type ImportResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
	Errors  []error  `json:"-"`
	DryRun  bool     `json:"dryRun"`
}

// Err joins every per-source error.
func (r *ImportResult) Err() error {
	if r == nil {
		return nil
	}
	return errors.Join(r.Errors...)
}

// Importer persists sources into a content store.
type Importer struct {
	store  content.Store
	logger interfaces.Logger
}

// NewImporter builds an Importer writing to store.
func NewImporter(store content.Store, logger interfaces.Logger) *Importer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{store: store, logger: logger}
}

// ImportSources saves each source, continuing past per-source failures.
func (i *Importer) ImportSources(ctx context.Context, sources []*Source, opts ImportOptions) (*ImportResult, error) {
	if i.store == nil {
		return nil, ErrStoreRequired
	}
	result := &ImportResult{DryRun: opts.DryRun}
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := i.importSource(ctx, source, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", source.Path, err))
		}
	}

	logging.WithFields(i.logger, map[string]any{
		"created_count": len(result.Created),
		"updated_count": len(result.Updated),
		"skipped_count": len(result.Skipped),
		"error_count":   len(result.Errors),
		"dry_run":       opts.DryRun,
	}).Info("markdown.import.completed")
	return result, result.Err()
}

func (i *Importer) importSource(ctx context.Context, source *Source, opts ImportOptions, result *ImportResult) error {
	if source.Slug == "" {
		return content.ErrEmptySlug
	}
	if len(source.Skipped) > 0 {
		i.logger.Warn("markdown.import.keys_dropped", "path", source.Path, "keys", strings.Join(source.Skipped, ","))
	}
	raw, err := source.Raw()
	if err != nil {
		return err
	}

	if opts.DryRun {
		return i.classify(ctx, source.Slug, raw, opts, result)
	}

	doc, err := i.store.Save(ctx, content.SaveRequest{Slug: source.Slug, Raw: raw, Mode: content.ModeCreate})
	switch {
	case err == nil:
		result.Created = append(result.Created, doc.Slug)
		return nil
	case !content.IsConflict(err):
		return err
	case !opts.UpdateExisting:
		result.Skipped = append(result.Skipped, source.Slug)
		return nil
	}

	existing, err := i.store.FetchBySlug(ctx, source.Slug)
	if err != nil {
		return err
	}
	if existing.Raw == raw {
		result.Skipped = append(result.Skipped, existing.Slug)
		return nil
	}
	doc, err = i.store.Save(ctx, content.SaveRequest{Slug: source.Slug, Raw: raw, Mode: content.ModeOverwrite})
	if err != nil {
		return err
	}
	result.Updated = append(result.Updated, doc.Slug)
	return nil
}

func (i *Importer) classify(ctx context.Context, slug, raw string, opts ImportOptions, result *ImportResult) error {
	existing, err := i.store.FetchBySlug(ctx, slug)
	switch {
	case content.IsNotFound(err):
		result.Created = append(result.Created, slug)
	case err != nil:
		return err
	case opts.UpdateExisting && existing.Raw != raw:
		result.Updated = append(result.Updated, slug)
	default:
		result.Skipped = append(result.Skipped, slug)
	}
	return nil
}

// Config configures a Service.
type Config struct {
	BasePath  string
	Patterns  []string
	Recursive bool
}

// Service loads a directory from disk and imports it.
type Service struct {
	loader   *Loader
	importer *Importer
}

// NewService builds a Service rooted at cfg.BasePath.
func NewService(cfg Config, store content.Store, logger interfaces.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.BasePath) == "" {
		return nil, ErrBasePathRequired
	}
	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("markdown importer: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown importer: %s is not a directory", cfg.BasePath)
	}
	return NewServiceFS(os.DirFS(cfg.BasePath), cfg, store, logger), nil
}

// NewServiceFS builds a Service over an arbitrary filesystem.
func NewServiceFS(filesystem fs.FS, cfg Config, store content.Store, logger interfaces.Logger) *Service {
	return &Service{
		loader:   NewLoader(filesystem, LoaderConfig{Patterns: cfg.Patterns, Recursive: cfg.Recursive}),
		importer: NewImporter(store, logger),
	}
}

// ImportDirectory loads every matching file under dir and imports it.
func (s *Service) ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error) {
	sources, err := s.loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	return s.importer.ImportSources(ctx, sources, opts)
}
