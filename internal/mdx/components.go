package mdx

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/headings"
)

var calloutTemplate = MustTemplate("Callout",
	`<aside class="callout callout-{{.PropOr "type" "note"}}" role="note">`+
		`{{with .Prop "title"}}<p class="callout-title">{{.}}</p>{{end}}`+
		`<div class="callout-body">{{.Children}}</div></aside>`)

var imageTemplate = MustTemplate("Image",
	`<figure class="mdx-image"><img src="{{.Prop "src"}}" alt="{{.Prop "alt"}}"`+
		`{{with .Prop "width"}} width="{{.}}"{{end}}{{with .Prop "height"}} height="{{.}}"{{end}} loading="lazy">`+
		`{{with .Prop "caption"}}<figcaption>{{.}}</figcaption>{{end}}</figure>`,
	"src")

var detailsTemplate = MustTemplate("Details",
	`<details class="mdx-details"{{if .Prop "open"}} open{{end}}>`+
		`<summary>{{.PropOr "summary" "Details"}}</summary>{{.Children}}</details>`)

var youtubeTemplate = MustTemplate("YouTube",
	`<div class="mdx-embed"><iframe src="https://www.youtube-nocookie.com/embed/{{.Prop "id"}}"`+
		` title="{{.PropOr "title" "YouTube video"}}" allowfullscreen loading="lazy"></iframe></div>`,
	"id")

var tocTemplate = template.Must(template.New("TOCInline").Parse(
	`{{if .Disclosure}}<details class="toc-inline"><summary>Table of Contents</summary>{{else}}<nav class="toc-inline">{{end}}` +
		`<ul>{{range .Entries}}<li class="toc-level-{{.Level}}"><a href="#{{.Slug}}">{{.Text}}</a></li>{{end}}</ul>` +
		`{{if .Disclosure}}</details>{{else}}</nav>{{end}}`))

// DefaultComponents returns the components available to every post.
func DefaultComponents() map[string]Component {
	return map[string]Component{
		"Callout":   calloutTemplate,
		"Image":     imageTemplate,
		"Details":   detailsTemplate,
		"YouTube":   youtubeTemplate,
		"TOCInline": ComponentFunc(renderTOCInline),
	}
}

// renderTOCInline lists the body's headings between fromHeading and toHeading.
func renderTOCInline(_ context.Context, w io.Writer, node Node) error {
	from, err := levelProp(node, "fromHeading", 1)
	if err != nil {
		return err
	}
	to, err := levelProp(node, "toHeading", 6)
	if err != nil {
		return err
	}

	var entries []headings.Heading
	for _, h := range node.TOC {
		if h.Level >= from && h.Level <= to {
			entries = append(entries, h)
		}
	}
	return tocTemplate.Execute(w, struct {
		Disclosure bool
		Entries    []headings.Heading
	}{
		Disclosure: node.Prop("asDisclosure") == "true",
		Entries:    entries,
	})
}

func levelProp(node Node, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(node.Prop(name))
	if raw == "" {
		return fallback, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > 6 {
		return 0, fmt.Errorf("prop %q must be a heading level between 1 and 6, got %q", name, raw)
	}
	return level, nil
}
