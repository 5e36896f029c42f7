// Package render resolves a slug into a fully rendered post: fetch, split,
// normalize and extract headings, compile, select the layout.
package render

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/headings"
	"github.com/goliatone/go-blog/internal/layouts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/mdx"
	"github.com/goliatone/go-blog/internal/metadata"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// State is a step of the render state machine.
type State string

const (
	StateFetching    State = "fetching"
	StateSplitting   State = "splitting"
	StateCompiling   State = "compiling"
	StateRendered    State = "rendered"
	StateNotFound    State = "not_found"
	StateRenderError State = "render_error"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateRendered || s == StateNotFound || s == StateRenderError
}

// BodyCompiler compiles a post body. *mdx.Compiler satisfies it.
type BodyCompiler interface {
	Compile(ctx context.Context, body string, registry *mdx.Registry) (mdx.Renderable, error)
}

// Result is the outcome of a render. Only Rendered carries Body; RenderError
// carries the inline Fragment and the compile error.
type Result struct {
	State    State              `json:"state"`
	Slug     string             `json:"slug"`
	Body     template.HTML      `json:"html,omitempty"`
	Fragment template.HTML      `json:"fragment,omitempty"`
	Metadata *metadata.Metadata `json:"metadata,omitempty"`
	Headings []headings.Heading `json:"headings,omitempty"`
	Layout   layouts.Layout     `json:"layout"`
	Trace    []State            `json:"trace"`
	Err      error              `json:"-"`
}

// HTML returns whatever should be shown in place of the body.
func (r *Result) HTML() template.HTML {
	if r.State == StateRenderError {
		return r.Fragment
	}
	return r.Body
}

// Orchestrator drives the render state machine. It holds no per-request state.
type Orchestrator struct {
	store      content.Store
	compiler   BodyCompiler
	registry   *mdx.Registry
	normalizer *metadata.Normalizer
	logger     interfaces.Logger
	metrics    metrics.Recorder
	debug      bool
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCompiler overrides the body compiler.
func WithCompiler(c BodyCompiler) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.compiler = c
		}
	}
}

// WithRegistry sets the component registry handed to the compiler.
func WithRegistry(r *mdx.Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithNormalizer overrides the metadata normalizer.
func WithNormalizer(n *metadata.Normalizer) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l interfaces.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics.OrNoop(m)
	}
}

// WithDebug includes compile error details in error fragments.
func WithDebug(debug bool) Option {
	return func(o *Orchestrator) {
		o.debug = debug
	}
}

// NewOrchestrator constructs an Orchestrator reading from store.
func NewOrchestrator(store content.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		compiler:   mdx.NewCompiler(),
		registry:   mdx.DefaultRegistry(),
		normalizer: metadata.NewNormalizer(),
		logger:     logging.NoOp(),
		metrics:    metrics.NoopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Render resolves slug. Missing posts and compile failures are reported
// through Result.State; the error return is reserved for repository failures
// and cancellation.
func (o *Orchestrator) Render(ctx context.Context, slug string) (*Result, error) {
	started := o.now()
	slug = content.NormalizeSlug(slug)
	res := &Result{Slug: slug}
	logger := logging.WithRenderContext(o.logger.WithContext(ctx), slug, "", "")

	res.enter(StateFetching)
	doc, err := o.fetch(ctx, slug)
	if err != nil {
		if content.IsNotFound(err) {
			res.enter(StateNotFound)
			logger.Debug("render.not_found")
			o.finish(res, started)
			return res, nil
		}
		logger.Error("render.fetch_failed", "error", err)
		return nil, fmt.Errorf("render %q: %w", slug, err)
	}

	res.enter(StateSplitting)
	body, err := o.derive(ctx, slug, doc, res, logger)
	if err != nil {
		return nil, err
	}

	res.enter(StateCompiling)
	renderable, err := o.compiler.Compile(ctx, body, o.registry)
	if err != nil {
		var ce *mdx.CompileError
		if !errors.As(err, &ce) {
			return nil, fmt.Errorf("render %q: %w", slug, err)
		}
		res.Err = err
		res.Fragment = mdx.ErrorFragment(err, o.debug)
		res.enter(StateRenderError)
		o.metrics.IncCompileError(ce.Component)
		logger.Warn("render.compile_failed", "error", err, "line", ce.Line, "component", ce.Component)
		o.finish(res, started)
		return res, nil
	}

	res.Body = renderable.HTML
	res.enter(StateRendered)
	logging.WithRenderContext(logger, "", string(res.State), res.Layout.ID()).Debug("render.completed")
	o.finish(res, started)
	return res, nil
}

func (o *Orchestrator) fetch(ctx context.Context, slug string) (*content.Document, error) {
	if slug == "" {
		return nil, &content.NotFoundError{Resource: "post"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.store.FetchBySlug(ctx, slug)
}

// derive splits the blob, then normalizes metadata and extracts headings
// concurrently. It returns the body to compile.
func (o *Orchestrator) derive(ctx context.Context, slug string, doc *content.Document, res *Result, logger interfaces.Logger) (string, error) {
	parsed := frontmatter.Parse(doc.Raw)
	if parsed.Err != nil {
		logger.Warn("render.malformed_metadata", "error", parsed.Err)
	}

	var (
		meta metadata.Metadata
		toc  []headings.Heading
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta = o.normalizer.Normalize(slug, doc.Fields, parsed.Frontmatter)
		return gctx.Err()
	})
	g.Go(func() error {
		toc = headings.Extract(parsed.Body)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	meta.Variant = layouts.Select(meta.Layout)
	res.Metadata = &meta
	res.Layout = meta.Variant
	res.Headings = toc
	return parsed.Body, nil
}

func (r *Result) enter(state State) {
	r.State = state
	r.Trace = append(r.Trace, state)
}

func (o *Orchestrator) finish(res *Result, started time.Time) {
	layout := "none"
	if res.Metadata != nil {
		layout = res.Layout.String()
	}
	o.metrics.ObserveRender(string(res.State), o.now().Sub(started))
	o.metrics.IncRenderOutcome(string(res.State), layout)
}
