package mdx

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-blog/internal/headings"
)

var componentNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9_.]*$`)

// Node is a resolved component invocation.
type Node struct {
	Name     string
	Props    map[string]string
	Children template.HTML
	Line     int
	// TOC holds the headings of the body being compiled.
	TOC []headings.Heading
}

// Prop returns the named prop, empty when absent.
func (n Node) Prop(name string) string {
	return n.Props[name]
}

// PropOr returns the named prop or fallback when absent or blank.
func (n Node) PropOr(name, fallback string) string {
	if v := strings.TrimSpace(n.Props[name]); v != "" {
		return v
	}
	return fallback
}

// Component renders a Node.
type Component interface {
	Render(ctx context.Context, w io.Writer, node Node) error
}

// ComponentFunc adapts a function into a Component.
type ComponentFunc func(ctx context.Context, w io.Writer, node Node) error

func (f ComponentFunc) Render(ctx context.Context, w io.Writer, node Node) error {
	return f(ctx, w, node)
}

type templateComponent struct {
	tpl      *template.Template
	required []string
}

// Template builds a Component from an html/template source. The template
// receives the Node, so `{{.Prop "title"}}` and `{{.Children}}` are available.
// Missing required props fail the render.
func Template(name, src string, required ...string) (Component, error) {
	tpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("mdx: parse component %s: %w", name, err)
	}
	return &templateComponent{tpl: tpl, required: required}, nil
}

// MustTemplate is Template that panics on parse errors.
func MustTemplate(name, src string, required ...string) Component {
	c, err := Template(name, src, required...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *templateComponent) Render(_ context.Context, w io.Writer, node Node) error {
	for _, prop := range c.required {
		if strings.TrimSpace(node.Props[prop]) == "" {
			return fmt.Errorf("missing required prop %q", prop)
		}
	}
	return c.tpl.Execute(w, node)
}

// Registry maps component names to implementations. It cannot be modified
// after construction, so one instance can serve concurrent compiles.
type Registry struct {
	components map[string]Component
}

// NewRegistry merges the given sets into a registry; later sets override
// earlier ones. Names must start with an uppercase letter.
func NewRegistry(sets ...map[string]Component) (*Registry, error) {
	merged := make(map[string]Component)
	for _, set := range sets {
		for name, component := range set {
			if !componentNamePattern.MatchString(name) {
				return nil, fmt.Errorf("mdx: invalid component name %q", name)
			}
			if component == nil {
				return nil, fmt.Errorf("mdx: component %q is nil", name)
			}
			merged[name] = component
		}
	}
	return &Registry{components: merged}, nil
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (Component, bool) {
	if r == nil {
		return nil, false
	}
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.components))
}

var defaultRegistry = func() *Registry {
	reg, err := NewRegistry(DefaultComponents())
	if err != nil {
		panic(err)
	}
	return reg
}()

// DefaultRegistry returns the registry holding DefaultComponents.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
