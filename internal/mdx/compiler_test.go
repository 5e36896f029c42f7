package mdx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func compile(t *testing.T, body string, opts ...Option) string {
	t.Helper()
	out, err := NewCompiler(opts...).Compile(context.Background(), body, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return string(out.HTML)
}

func TestCompilePlainMarkdown(t *testing.T) {
	out := compile(t, "# Hello, World!\n\nSome *text*.")

	if !strings.Contains(out, `<h1 id="hello-world">Hello, World!</h1>`) {
		t.Fatalf("expected heading with slug id, got %s", out)
	}
	if !strings.Contains(out, "<em>text</em>") {
		t.Fatalf("expected emphasis, got %s", out)
	}
}

func TestCompileIgnoresPlaceholderLookalikesInBody(t *testing.T) {
	out := compile(t, "<!--mdx:0--> <Callout>x</Callout>")

	if n := strings.Count(out, `<aside class="callout`); n != 1 {
		t.Fatalf("expected exactly one callout, got %d in %s", n, out)
	}
}

func TestCompileBlockComponentWithMarkdownChildren(t *testing.T) {
	body := "Intro\n\n<Callout type=\"warning\" title={\"Heads up\"}>\n\nUse **care**.\n\n</Callout>\n\nOutro"

	out, err := NewCompiler().Compile(context.Background(), body, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	html := string(out.HTML)
	for _, want := range []string{
		`<aside class="callout callout-warning" role="note">`,
		`<p class="callout-title">Heads up</p>`,
		"<strong>care</strong>",
		"<p>Outro</p>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}
	if strings.Contains(html, placeholderPrefix) {
		t.Fatalf("placeholder leaked into output: %s", html)
	}
	if len(out.Components) != 1 || out.Components[0] != "Callout" {
		t.Fatalf("expected component usage to be recorded, got %v", out.Components)
	}
}

func TestCompileNestedAndSelfClosingComponents(t *testing.T) {
	body := "<Details summary=\"More\">\n\n<Image src=\"/a.png\" alt=\"A\" />\n\n</Details>\n"

	out := compile(t, body)

	if !strings.Contains(out, "<summary>More</summary>") {
		t.Fatalf("expected details summary, got %s", out)
	}
	if !strings.Contains(out, `<img src="/a.png" alt="A" loading="lazy">`) {
		t.Fatalf("expected nested image, got %s", out)
	}
}

func TestCompileInlineComponentChildrenAreNotWrapped(t *testing.T) {
	out := compile(t, "<Callout>short *note*</Callout>\n")
	if !strings.Contains(out, `<div class="callout-body">short <em>note</em></div>`) {
		t.Fatalf("expected inline children without paragraph, got %s", out)
	}
}

func TestCompileTOCInlineUsesBodyHeadings(t *testing.T) {
	body := "<TOCInline toHeading={2} />\n\n## First Part\n\n### Deep\n\n## Second"
	out := compile(t, body)

	if !strings.Contains(out, `<a href="#first-part">First Part</a>`) {
		t.Fatalf("expected toc entry, got %s", out)
	}
	if strings.Contains(out, `href="#deep"`) {
		t.Fatalf("expected toHeading to filter level 3, got %s", out)
	}
	if !strings.Contains(out, `<h2 id="first-part">`) {
		t.Fatalf("expected heading id to match toc slug, got %s", out)
	}
}

func TestCompileIgnoresCode(t *testing.T) {
	body := "```mdx\n<Unknown prop=\"x\">\n```\n\nInline `<Missing />` code."
	out := compile(t, body)

	if !strings.Contains(out, "&lt;Unknown prop=&quot;x&quot;&gt;") {
		t.Fatalf("expected fenced tag to be escaped code, got %s", out)
	}
	if !strings.Contains(out, "<code>&lt;Missing /&gt;</code>") {
		t.Fatalf("expected inline code untouched, got %s", out)
	}
}

func TestCompileRewritesJSXAttributesOnRawHTML(t *testing.T) {
	out := compile(t, "<div className=\"note\">\n<label htmlFor={\"x\"}>X</label>\n</div>\n")
	if !strings.Contains(out, `<div class="note">`) || !strings.Contains(out, `<label for="x">`) {
		t.Fatalf("expected JSX attribute rewrite, got %s", out)
	}
}

func TestCompileDropsJSXComments(t *testing.T) {
	out := compile(t, "before {/* hidden\nnote */} after")
	if strings.Contains(out, "hidden") || !strings.Contains(out, "before  after") {
		t.Fatalf("expected comment to be removed, got %s", out)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		sentinel  error
		line      int
		component string
	}{
		{"unknown", "text\n\n<Chart data={x} />", ErrUnknownComponent, 3, "Chart"},
		{"unclosed", "<Callout>\n\nbody", ErrUnclosedComponent, 1, "Callout"},
		{"stray close", "body\n</Callout>", ErrUnexpectedClose, 2, "Callout"},
		{"mismatch", "<Callout>\n<Details>\n</Callout>", ErrUnexpectedClose, 3, "Callout"},
		{"unterminated tag", "<Image src=\"a.png\"", ErrMalformedTag, 1, "Image"},
		{"bad attribute", "<Image src=a.png />", ErrMalformedTag, 1, "Image"},
		{"missing prop", "<Image alt=\"x\" />", ErrComponentRender, 1, "Image"},
		{"bad level", "<TOCInline toHeading={9} />", ErrComponentRender, 1, "TOCInline"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCompiler().Compile(context.Background(), tc.body, nil)
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CompileError, got %v", err)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Fatalf("expected %v, got %v", tc.sentinel, err)
			}
			if ce.Line != tc.line || ce.Component != tc.component {
				t.Fatalf("expected line %d component %s, got %d %s", tc.line, tc.component, ce.Line, ce.Component)
			}
		})
	}
}

func TestCompileHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCompiler().Compile(ctx, "# hi", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompileSanitizes(t *testing.T) {
	body := "<script>alert(1)</script>\n\n<Callout type=\"note\">ok</Callout>\n\n<a href=\"javascript:alert(1)\">x</a>"
	out := compile(t, body, WithParseOptions(interfaces.ParseOptions{Sanitize: true}))

	if strings.Contains(out, "<script>") || strings.Contains(out, "javascript:") {
		t.Fatalf("expected unsafe markup to be removed, got %s", out)
	}
	if !strings.Contains(out, `class="callout callout-note"`) {
		t.Fatalf("expected component markup to survive sanitisation, got %s", out)
	}
}

func TestCustomRegistry(t *testing.T) {
	greeting := ComponentFunc(func(_ context.Context, w io.Writer, node Node) error {
		_, err := fmt.Fprintf(w, "<span>hi %s</span>", node.Prop("name"))
		return err
	})
	reg, err := NewRegistry(DefaultComponents(), map[string]Component{"Greeting": greeting})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	out, err := NewCompiler().Compile(context.Background(), "Say <Greeting name='ana' />!", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(string(out.HTML), "<p>Say <span>hi ana</span>!</p>") {
		t.Fatalf("unexpected output %s", out.HTML)
	}
}

func TestNewRegistryRejectsLowercaseNames(t *testing.T) {
	if _, err := NewRegistry(map[string]Component{"callout": calloutTemplate}); err == nil {
		t.Fatal("expected lowercase name to be rejected")
	}
}

func TestCompileIsSafeForConcurrentUse(t *testing.T) {
	compiler := NewCompiler()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("## Part %d\n\n<Callout>n%d</Callout>", i, i)
			out, err := compiler.Compile(context.Background(), body, nil)
			if err != nil {
				errs <- err
				return
			}
			if !strings.Contains(string(out.HTML), fmt.Sprintf(`id="part-%d"`, i)) {
				errs <- fmt.Errorf("cross-talk in output %s", out.HTML)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestErrorFragmentHidesDetailOutsideDebug(t *testing.T) {
	err := &CompileError{Line: 2, Component: "Chart", Err: ErrUnknownComponent}

	prod := string(ErrorFragment(err, false))
	if strings.Contains(prod, "Chart") {
		t.Fatalf("expected no detail in production fragment, got %s", prod)
	}
	debug := string(ErrorFragment(err, true))
	if !strings.Contains(debug, "line 2: &lt;Chart&gt;: unknown component") {
		t.Fatalf("expected escaped detail in debug fragment, got %s", debug)
	}
}
