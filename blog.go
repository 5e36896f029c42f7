package blog

import (
	"context"
	"net/http"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/render"
)

// PostService exports the posts and categories service contract.
type PostService = posts.Service

// ContentStore exports the raw blob store contract the pipeline reads from.
type ContentStore = content.Store

// Document exports the stored post blob.
type Document = content.Document

// RenderResult exports the outcome of a render.
type RenderResult = render.Result

// Draft exports the editor's in-progress state.
type Draft = admin.Draft

// Subject identifies the holder of an issued token.
type Subject = auth.Subject

// Module represents the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module using the provided configuration and optional DI overrides.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured posts service.
func (m *Module) Posts() PostService {
	return m.container.PostService()
}

// Content returns the store backing the reader and editor.
func (m *Module) Content() ContentStore {
	return m.container.ContentStore()
}

// Render resolves slug through the full pipeline. A missing post is reported
// through the result state, not as an error.
func (m *Module) Render(ctx context.Context, slug string) (*RenderResult, error) {
	return m.container.Renderer().Render(ctx, slug)
}

// Editor returns the admin load/save/preview service.
func (m *Module) Editor() *admin.Service {
	return m.container.Editor()
}

// Handler returns the HTTP surface.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.HTTPHandler()
}

// IssueToken signs a bearer token for subject.
func (m *Module) IssueToken(subject Subject) (string, error) {
	return m.container.IssueToken(subject)
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
