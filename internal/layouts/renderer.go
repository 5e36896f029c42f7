package layouts

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/goliatone/go-blog/internal/headings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data handed to a layout template.
type Page struct {
	Title       string
	Description string
	Date        time.Time
	Authors     []string
	Tags        []string
	CoverImage  string
	Path        string
	Body        template.HTML
	Headings    []headings.Heading
	Prev        *Link
	Next        *Link
}

// Link points at a neighbouring post.
type Link struct {
	Title string
	URL   string
}

// Renderer renders pages with one template per variant.
type Renderer struct {
	templates map[Layout]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
	"iso": func(t time.Time) string { return t.Format(time.RFC3339) },
}

// NewRenderer parses the embedded layout templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("layouts: parse base: %w", err)
	}

	r := &Renderer{templates: make(map[Layout]*template.Template, 3)}
	for _, layout := range All() {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("layouts: clone base: %w", err)
		}
		tpl, err := clone.ParseFS(templateFS, "templates/"+layout.String()+".html")
		if err != nil {
			return nil, fmt.Errorf("layouts: parse %s: %w", layout, err)
		}
		r.templates[layout] = tpl
	}
	return r, nil
}

// Render writes the full page for layout.
func (r *Renderer) Render(w io.Writer, layout Layout, page Page) error {
	tpl, ok := r.templates[layout]
	if !ok {
		tpl = r.templates[Standard]
	}
	return tpl.ExecuteTemplate(w, "base.html", page)
}
