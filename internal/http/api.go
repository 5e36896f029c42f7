package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/layouts"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/metrics"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Renderer resolves a slug into a render result. *render.Orchestrator satisfies it.
type Renderer interface {
	Render(ctx context.Context, slug string) (*render.Result, error)
}

// Editor is the admin round trip. *admin.Service satisfies it.
type Editor interface {
	Load(ctx context.Context, slug string) (*admin.LoadResult, error)
	Save(ctx context.Context, req admin.SaveRequest) (*admin.SaveResult, error)
	Preview(ctx context.Context, draft admin.Draft) (*admin.PreviewResult, error)
}

// API registers the reader, REST and editor endpoints.
type API struct {
	readerPath     string
	store          content.Store
	posts          posts.Service
	renderer       Renderer
	pages          *layouts.Renderer
	editor         Editor
	auth           *auth.Authenticator
	metrics        metrics.Recorder
	metricsHandler http.Handler
	logger         interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		readerPath: "/blog",
		metrics:    metrics.NoopRecorder{},
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithReaderPath overrides the HTML reader prefix (defaults to "/blog").
func WithReaderPath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.readerPath = joinPath(trimmed, "")
		}
	}
}

// WithStore wires the raw content store behind /api/mdx.
func WithStore(store content.Store) Option {
	return func(api *API) {
		api.store = store
	}
}

// WithPostService wires the posts and categories REST endpoints.
func WithPostService(service posts.Service) Option {
	return func(api *API) {
		api.posts = service
	}
}

// WithRenderer wires the render pipeline and the layout templates for the reader.
func WithRenderer(renderer Renderer, pages *layouts.Renderer) Option {
	return func(api *API) {
		api.renderer = renderer
		api.pages = pages
	}
}

// WithEditor wires the admin editor endpoints.
func WithEditor(editor Editor) Option {
	return func(api *API) {
		api.editor = editor
	}
}

// WithAuthenticator gates mutating endpoints behind admin tokens.
func WithAuthenticator(authenticator *auth.Authenticator) Option {
	return func(api *API) {
		api.auth = authenticator
	}
}

// WithMetrics records request durations and exposes handler under /metrics.
func WithMetrics(recorder metrics.Recorder, handler http.Handler) Option {
	return func(api *API) {
		api.metrics = metrics.OrNoop(recorder)
		api.metricsHandler = handler
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: api is nil")
	}

	api.registerReaderRoutes(mux)
	api.registerMDXRoutes(mux)
	api.registerPostRoutes(mux)
	api.registerCategoryRoutes(mux)
	api.registerEditorRoutes(mux)
	api.registerAuthRoutes(mux)
	if api.metricsHandler != nil {
		mux.Handle("GET /metrics", api.metricsHandler)
	}
	return nil
}

// Handler returns a mux with every route registered, wrapped in request instrumentation.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return api.instrument(mux), nil
}

// admin wraps fn so it only runs for admin tokens.
func (api *API) admin(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api.auth == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: "authentication is not configured"})
			return
		}
		api.auth.RequireAdmin(fn).ServeHTTP(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (api *API) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(started)
		api.metrics.ObserveHTTPRequest(route, rec.status, elapsed)
		logging.WithFields(api.logger, map[string]any{
			"method": r.Method,
			"route":  route,
			"status": rec.status,
		}).Debug("http.request.completed", "duration", elapsed)
	})
}
