// Package admin implements the editor round trip: load a post for editing,
// save edited metadata and body back as one blob, and preview a draft.
package admin

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/headings"
	"github.com/goliatone/go-blog/internal/layouts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/mdx"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Draft is the in-progress edit state held by the editor.
type Draft struct {
	Slug        string                  `json:"slug"`
	Frontmatter frontmatter.Frontmatter `json:"frontmatter"`
	Body        string                  `json:"body"`
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	d.Frontmatter = d.Frontmatter.Clone()
	return d
}

// LoadResult is a post opened for editing. Warning is set when the stored
// metadata block was malformed and part of it was folded into Body.
type LoadResult struct {
	Draft   Draft  `json:"draft"`
	ID      string `json:"id,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// SaveRequest persists a draft.
type SaveRequest struct {
	Draft Draft
	Mode  content.SaveMode
}

// SaveResult is returned on success. Redirect is the canonical read URL.
type SaveResult struct {
	Document *content.Document `json:"-"`
	Slug     string            `json:"slug"`
	Redirect string            `json:"redirect"`
}

// SaveError reports a failed save and hands back the untouched draft.
type SaveError struct {
	Draft Draft
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("admin: save %q: %v", e.Draft.Slug, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// PreviewResult is a compiled draft body.
type PreviewResult struct {
	HTML     template.HTML      `json:"html"`
	Headings []headings.Heading `json:"headings"`
	Layout   string             `json:"layout"`
	Error    string             `json:"error,omitempty"`
}

// PreviewCompileFailed is reported in PreviewResult.Error when debug output
// is off.
const PreviewCompileFailed = "compile_failed"

// URLBuilder resolves the canonical read URL for a slug.
type URLBuilder interface {
	Post(slug string) (string, error)
}

// Compiler compiles draft bodies for preview.
type Compiler interface {
	Compile(ctx context.Context, body string, registry *mdx.Registry) (mdx.Renderable, error)
}

// Service coordinates editor operations against a content store.
type Service struct {
	store    content.Store
	urls     URLBuilder
	compiler Compiler
	registry *mdx.Registry
	logger   interfaces.Logger
	metrics  metrics.Recorder
	debug    bool
}

// Option configures the Service.
type Option func(*Service)

// WithCompiler sets the preview compiler.
func WithCompiler(compiler Compiler) Option {
	return func(s *Service) {
		if compiler != nil {
			s.compiler = compiler
		}
	}
}

// WithRegistry sets the component registry used for preview.
func WithRegistry(registry *mdx.Registry) Option {
	return func(s *Service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = metrics.OrNoop(recorder)
	}
}

// WithDebug includes compile error detail in preview fragments.
func WithDebug(debug bool) Option {
	return func(s *Service) {
		s.debug = debug
	}
}

// NewService wires the editor service.
func NewService(store content.Store, urls URLBuilder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		urls:     urls,
		compiler: mdx.NewCompiler(),
		registry: mdx.DefaultRegistry(),
		logger:   logging.NoOp(),
		metrics:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches slug and splits it into an editable draft.
func (s *Service) Load(ctx context.Context, slug string) (*LoadResult, error) {
	doc, err := s.store.FetchBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	parsed := frontmatter.Parse(doc.Raw)
	result := &LoadResult{
		ID: doc.ID,
		Draft: Draft{
			Slug:        doc.Slug,
			Frontmatter: parsed.Frontmatter,
			Body:        parsed.Body,
		},
	}
	if parsed.Err != nil {
		result.Warning = parsed.Err.Error()
		logging.WithFields(s.logger, map[string]any{"slug": doc.Slug}).Warn("admin.load.malformed_metadata", "error", parsed.Err)
	}
	return result, nil
}

// Save serializes the draft and persists it. Any failure returns a
// *SaveError carrying a copy of the draft exactly as submitted.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	logger := logging.WithFields(s.logger, map[string]any{
		"slug": req.Draft.Slug,
		"mode": req.Mode.String(),
	})
	fail := func(err error) (*SaveResult, error) {
		s.metrics.IncSave(req.Mode.String(), saveOutcome(err))
		logger.Warn("admin.save.failed", "error", err)
		return nil, &SaveError{Draft: req.Draft.Clone(), Err: err}
	}

	if content.NormalizeSlug(req.Draft.Slug) == "" {
		return fail(content.ErrEmptySlug)
	}
	raw, err := frontmatter.Serialize(req.Draft.Frontmatter, req.Draft.Body)
	if err != nil {
		return fail(err)
	}
	doc, err := s.store.Save(ctx, content.SaveRequest{
		Slug: req.Draft.Slug,
		Raw:  raw,
		Mode: req.Mode,
	})
	if err != nil {
		return fail(err)
	}
	redirect, err := s.urls.Post(doc.Slug)
	if err != nil {
		return fail(err)
	}

	s.metrics.IncSave(req.Mode.String(), "ok")
	logger.Info("admin.save.completed", "redirect", redirect)
	return &SaveResult{Document: doc, Slug: doc.Slug, Redirect: redirect}, nil
}

// Preview compiles a draft body. Compile failures are reported inside the
// result as an error fragment rather than as an error return.
func (s *Service) Preview(ctx context.Context, draft Draft) (*PreviewResult, error) {
	started := time.Now()
	out := &PreviewResult{
		Headings: headings.Extract(draft.Body),
		Layout:   layouts.Select(draft.Frontmatter.String(frontmatter.KeyLayout)).ID(),
	}
	renderable, err := s.compiler.Compile(ctx, draft.Body, s.registry)
	switch {
	case err == nil:
		out.HTML = renderable.HTML
	case mdx.IsCompileError(err):
		out.HTML = mdx.ErrorFragment(err, s.debug)
		out.Error = PreviewCompileFailed
		if s.debug {
			out.Error = err.Error()
		}
		s.logger.Warn("admin.preview.compile_failed", "error", err)
		var compileErr *mdx.CompileError
		if errors.As(err, &compileErr) {
			s.metrics.IncCompileError(compileErr.Component)
		}
	default:
		return nil, err
	}
	s.logger.Debug("admin.preview.completed", "duration", time.Since(started))
	return out, nil
}

func saveOutcome(err error) string {
	switch {
	case content.IsConflict(err):
		return "conflict"
	case errors.Is(err, content.ErrEmptySlug), errors.Is(err, frontmatter.ErrInvalidKey):
		return "invalid"
	}
	return "error"
}
