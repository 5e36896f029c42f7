package mdx

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"
)

var (
	ErrUnknownComponent  = errors.New("unknown component")
	ErrUnclosedComponent = errors.New("unclosed component")
	ErrUnexpectedClose   = errors.New("unexpected closing tag")
	ErrMalformedTag      = errors.New("malformed tag")
	ErrComponentRender   = errors.New("component render failed")
)

// CompileError reports a body that could not be compiled.
type CompileError struct {
	Line      int
	Component string
	Reason    string
	Err       error
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("mdx")
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Component != "" {
		fmt.Fprintf(&b, ": <%s>", e.Component)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// IsCompileError reports whether err carries a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// ErrorFragment is the HTML shown in place of a body that failed to compile.
// Error details are only included in debug mode.
func ErrorFragment(err error, debug bool) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="mdx-error" role="alert"><p>This post could not be rendered.</p>`)
	if debug && err != nil {
		b.WriteString("<pre>")
		b.WriteString(html.EscapeString(err.Error()))
		b.WriteString("</pre>")
	}
	b.WriteString("</div>")
	return template.HTML(b.String())
}
