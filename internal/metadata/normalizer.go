// Package metadata merges repository fields, parsed frontmatter and defaults
// into the single metadata record used for rendering.
package metadata

import (
	"path"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/layouts"
)

// DefaultPathPrefix is the route prefix under which posts are served.
const DefaultPathPrefix = "blog"

// Metadata is the normalized record. Slug and Path always derive from the
// routing slug; Layout keeps the raw identifier and Variant the selected one.
type Metadata struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Excerpt     string                  `json:"excerpt,omitempty"`
	Date        time.Time               `json:"date"`
	Author      string                  `json:"author,omitempty"`
	Authors     []string                `json:"authors"`
	Tags        []string                `json:"tags"`
	Layout      string                  `json:"layout"`
	Variant     layouts.Layout          `json:"variant"`
	Slug        string                  `json:"slug"`
	Path        string                  `json:"path"`
	Extra       frontmatter.Frontmatter `json:"extra,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// Normalizer applies precedence rules and defaults.
type Normalizer struct {
	now           func() time.Time
	defaultLayout string
	pathPrefix    string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used for the date default.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithDefaultLayout overrides the layout identifier applied when none is given.
func WithDefaultLayout(id string) Option {
	return func(n *Normalizer) {
		if id = strings.TrimSpace(id); id != "" {
			n.defaultLayout = id
		}
	}
}

// WithPathPrefix overrides the route prefix used to build Path.
func WithPathPrefix(prefix string) Option {
	return func(n *Normalizer) {
		n.pathPrefix = strings.Trim(strings.TrimSpace(prefix), "/")
	}
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:           time.Now,
		defaultLayout: layouts.DefaultID,
		pathPrefix:    DefaultPathPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Normalize merges the inputs. Repository title, date, tags and excerpt win
// when non-empty; frontmatter fills the rest; defaults cover what remains.
// The frontmatter slug never influences Slug or Path.
func (n *Normalizer) Normalize(slug string, repo content.Fields, fm frontmatter.Frontmatter) Metadata {
	slug = content.NormalizeSlug(slug)
	if fm == nil {
		fm = frontmatter.Frontmatter{}
	}

	meta := Metadata{
		Title:       firstNonEmpty(repo.Title, fm.String(frontmatter.KeyTitle)),
		Description: fm.String(frontmatter.KeyDescription),
		Excerpt:     firstNonEmpty(repo.Excerpt, fm.String("excerpt"), fm.String("summary")),
		Author:      firstNonEmpty(fm.String(frontmatter.KeyAuthor), repo.Author),
		Authors:     fm.Strings(frontmatter.KeyAuthors),
		Tags:        fm.Strings(frontmatter.KeyTags),
		Layout:      firstNonEmpty(fm.String(frontmatter.KeyLayout), n.defaultLayout),
		Slug:        slug,
		Path:        n.path(slug),
		Extra:       extra(fm),
	}
	meta.Variant = layouts.Select(meta.Layout)

	if len(repo.Tags) > 0 {
		meta.Tags = slices.Clone(repo.Tags)
	}

	switch {
	case !repo.Date.IsZero():
		meta.Date = repo.Date
	default:
		if parsed, ok := ParseDate(fm.String(frontmatter.KeyDate)); ok {
			meta.Date = parsed
		} else {
			meta.Date = n.now()
		}
	}
	return meta
}

// ParseDate accepts the date formats commonly found in post metadata.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) path(slug string) string {
	if n.pathPrefix == "" {
		return slug
	}
	return path.Join(n.pathPrefix, slug)
}

func extra(fm frontmatter.Frontmatter) frontmatter.Frontmatter {
	out := frontmatter.Frontmatter{}
	for key, value := range fm.Clone() {
		switch key {
		case frontmatter.KeyTitle, frontmatter.KeyDescription, frontmatter.KeyDate,
			frontmatter.KeyAuthor, frontmatter.KeyTags, frontmatter.KeyLayout, frontmatter.KeyAuthors:
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
