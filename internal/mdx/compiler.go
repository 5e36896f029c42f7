package mdx

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-blog/internal/headings"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	placeholderPrefix = "<!--mdx:"
	placeholderSuffix = "-->"
)

// Renderable is a compiled body.
type Renderable struct {
	HTML template.HTML `json:"html"`
	// Components lists the component names used, in order of appearance.
	Components []string `json:"components,omitempty"`
}

// Compiler turns post bodies into HTML.
type Compiler struct {
	options   interfaces.ParseOptions
	sanitizer *bluemonday.Policy
	logger    interfaces.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithParseOptions sets the markdown options.
func WithParseOptions(opts interfaces.ParseOptions) Option {
	return func(c *Compiler) {
		c.options = opts
	}
}

// WithSanitizer overrides the policy used when Sanitize or SafeMode is set.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(c *Compiler) {
		if policy != nil {
			c.sanitizer = policy
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCompiler constructs a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if (c.options.Sanitize || c.options.SafeMode) && c.sanitizer == nil {
		c.sanitizer = NewSanitizer()
	}
	return c
}

// compileSession carries the per-call state of one Compile.
type compileSession struct {
	ctx        context.Context
	engine     goldmark.Markdown
	registry   *Registry
	body       string
	toc        []headings.Heading
	tocLoaded  bool
	components []string
	// nonce keeps placeholders distinct from comments already in the body.
	nonce string
}

// Compile renders body with the given registry; a nil registry selects
// DefaultRegistry. Failures are reported as *CompileError.
func (c *Compiler) Compile(ctx context.Context, body string, registry *Registry) (Renderable, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Renderable{}, err
	}
	if registry == nil {
		registry = DefaultRegistry()
	}

	tree, err := scan(body)
	if err != nil {
		return Renderable{}, err
	}

	session := &compileSession{
		ctx:      ctx,
		engine:   newGoldmarkEngine(c.options),
		registry: registry,
		body:     body,
		nonce:    newPlaceholderNonce(),
	}

	out, err := session.render(tree)
	if err != nil {
		return Renderable{}, err
	}
	if c.sanitizer != nil {
		out = c.sanitizer.Sanitize(out)
	}
	c.logger.Debug("mdx.compiled", "bytes", len(out), "components", len(session.components))
	return Renderable{HTML: template.HTML(out), Components: session.components}, nil
}

// render converts a sibling list: components are rendered first and stand in
// the markdown as placeholders until goldmark has run.
func (s *compileSession) render(nodes []*node) (string, error) {
	var md strings.Builder
	var pairs []string

	for _, n := range nodes {
		if n.kind == textNode {
			md.WriteString(n.text)
			continue
		}
		rendered, err := s.renderElement(n)
		if err != nil {
			return "", err
		}
		placeholder := placeholderPrefix + s.nonce + ":" + strconv.Itoa(len(pairs)/2) + placeholderSuffix
		md.WriteString(placeholder)
		pairs = append(pairs, placeholder, rendered)
	}

	var buf bytes.Buffer
	pctx := parser.NewContext(parser.WithIDs(headingIDs{}))
	if err := s.engine.Convert([]byte(md.String()), &buf, parser.WithContext(pctx)); err != nil {
		return "", &CompileError{Err: fmt.Errorf("markdown: %w", err)}
	}

	out := buf.String()
	if len(pairs) > 0 {
		out = strings.NewReplacer(pairs...).Replace(out)
	}
	return out, nil
}

func newPlaceholderNonce() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *compileSession) renderElement(n *node) (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	component, ok := s.registry.Lookup(n.name)
	if !ok {
		return "", &CompileError{Line: n.line, Component: n.name, Err: ErrUnknownComponent}
	}
	s.components = append(s.components, n.name)

	children := ""
	if hasContent(n.children) {
		var err error
		if children, err = s.render(n.children); err != nil {
			return "", err
		}
		if n.inline {
			children = unwrapParagraph(children)
		}
	}

	var buf bytes.Buffer
	err := component.Render(s.ctx, &buf, Node{
		Name:     n.name,
		Props:    n.props,
		Children: template.HTML(children),
		Line:     n.line,
		TOC:      s.headings(),
	})
	if err != nil {
		return "", &CompileError{Line: n.line, Component: n.name, Err: ErrComponentRender, Reason: err.Error()}
	}
	return buf.String(), nil
}

func (s *compileSession) headings() []headings.Heading {
	if !s.tocLoaded {
		s.toc = headings.Extract(s.body)
		s.tocLoaded = true
	}
	return s.toc
}

func hasContent(nodes []*node) bool {
	for _, n := range nodes {
		if n.kind == elementNode || strings.TrimSpace(n.text) != "" {
			return true
		}
	}
	return false
}

// unwrapParagraph strips the single paragraph goldmark wraps around phrasing content.
func unwrapParagraph(html string) string {
	trimmed := strings.TrimSpace(html)
	if strings.HasPrefix(trimmed, "<p>") && strings.HasSuffix(trimmed, "</p>") && strings.Count(trimmed, "<p>") == 1 {
		return trimmed[len("<p>") : len(trimmed)-len("</p>")]
	}
	return trimmed
}
