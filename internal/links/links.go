// Package links builds canonical reader and editor URLs with go-urlkit.
package links

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/content"
	urlkit "github.com/goliatone/go-urlkit"
)

const (
	GroupFrontend = "frontend"
	GroupAdmin    = "admin"

	RoutePost  = "post"
	RouteIndex = "index"
	RouteEdit  = "edit"
	RouteNew   = "new"
)

// Config describes where the reader and editor are mounted.
type Config struct {
	BaseURL    string
	ReaderPath string
	AdminPath  string
}

// DefaultConfig mounts the reader under /blog and the editor under /admin.
func DefaultConfig() Config {
	return Config{
		ReaderPath: "/blog",
		AdminPath:  "/admin",
	}
}

// RouteConfig returns the urlkit configuration for cfg.
func (cfg Config) RouteConfig() *urlkit.Config {
	reader := "/" + strings.Trim(cfg.ReaderPath, "/")
	admin := "/" + strings.Trim(cfg.AdminPath, "/")
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupFrontend,
				BaseURL: base,
				Paths: map[string]string{
					RouteIndex: reader,
					RoutePost:  strings.TrimSuffix(reader, "/") + "/:slug",
				},
			},
			{
				Name:    GroupAdmin,
				BaseURL: base,
				Paths: map[string]string{
					RouteNew:  strings.TrimSuffix(admin, "/") + "/new",
					RouteEdit: strings.TrimSuffix(admin, "/") + "/edit/:slug",
				},
			},
		},
	}
}

// Builder resolves canonical URLs.
type Builder struct {
	manager *urlkit.RouteManager
}

// NewBuilder constructs a Builder for cfg.
func NewBuilder(cfg Config) *Builder {
	return &Builder{manager: urlkit.NewRouteManager(cfg.RouteConfig())}
}

// Post returns the canonical read URL for slug.
func (b *Builder) Post(slug string) (string, error) {
	return b.withSlug(GroupFrontend, RoutePost, slug)
}

// Edit returns the editor URL for slug.
func (b *Builder) Edit(slug string) (string, error) {
	return b.withSlug(GroupAdmin, RouteEdit, slug)
}

// Index returns the reader landing URL.
func (b *Builder) Index() (string, error) {
	return b.build(GroupFrontend, RouteIndex, nil)
}

func (b *Builder) withSlug(group, route, slug string) (string, error) {
	slug = content.NormalizeSlug(slug)
	if slug == "" {
		return "", content.ErrEmptySlug
	}
	return b.build(group, route, map[string]any{"slug": slug})
}

func (b *Builder) build(groupName, route string, params map[string]any) (url string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("links: route %s.%s: %v", groupName, route, rec)
		}
	}()
	builder := b.manager.Group(groupName).Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	url, err = builder.Build()
	if err != nil {
		return "", fmt.Errorf("links: build %s.%s: %w", groupName, route, err)
	}
	// slugs keep their path separators
	url = strings.ReplaceAll(strings.ReplaceAll(url, "%2F", "/"), "%2f", "/")
	return url, nil
}
