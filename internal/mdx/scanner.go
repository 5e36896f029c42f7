package mdx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fencePattern      = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
	classNamePattern  = regexp.MustCompile(`(\s)className=`)
	htmlForPattern    = regexp.MustCompile(`(\s)htmlFor=`)
	exprStringPattern = regexp.MustCompile(`=\{\s*"([^"{}]*)"\s*\}`)
)

type nodeKind int

const (
	textNode nodeKind = iota
	elementNode
)

// node is an element of the scanned body tree: a run of markdown text or a
// component invocation with its children.
type node struct {
	kind     nodeKind
	text     string
	name     string
	props    map[string]string
	children []*node
	line     int
	// inline is set when the children share a line with the tags.
	inline bool
}

type scanner struct {
	src   string
	pos   int
	line  int
	fence string
	text  strings.Builder
	stack []*node
}

// scan splits body into markdown text and component elements.
func scan(body string) ([]*node, error) {
	s := &scanner{
		src:   body,
		line:  1,
		stack: []*node{{kind: elementNode}},
	}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.stack[0].children, nil
}

func (s *scanner) top() *node {
	return s.stack[len(s.stack)-1]
}

func (s *scanner) flush() {
	if s.text.Len() == 0 {
		return
	}
	top := s.top()
	top.children = append(top.children, &node{kind: textNode, text: s.text.String()})
	s.text.Reset()
}

// emit copies src[s.pos:end] into the pending text.
func (s *scanner) emit(end int) {
	chunk := s.src[s.pos:end]
	s.line += strings.Count(chunk, "\n")
	s.text.WriteString(chunk)
	s.pos = end
}

func (s *scanner) skip(end int) {
	s.line += strings.Count(s.src[s.pos:end], "\n")
	s.pos = end
}

func (s *scanner) run() error {
	for s.pos < len(s.src) {
		if s.pos == 0 || s.src[s.pos-1] == '\n' {
			if s.handleFenceLine() {
				continue
			}
		}

		rest := s.src[s.pos:]
		switch {
		case rest[0] == '\\' && len(rest) > 1:
			s.emit(s.pos + 2)
		case rest[0] == '`':
			s.emit(s.pos + codeSpanLength(rest))
		case strings.HasPrefix(rest, "{/*"):
			end := strings.Index(rest, "*/}")
			if end < 0 {
				return &CompileError{Line: s.line, Err: ErrMalformedTag, Reason: "unterminated {/* comment"}
			}
			s.skip(s.pos + end + 3)
		case strings.HasPrefix(rest, "</") && len(rest) > 2 && isUpper(rest[2]):
			if err := s.closeTag(); err != nil {
				return err
			}
		case rest[0] == '<' && len(rest) > 1 && isUpper(rest[1]):
			if err := s.openTag(); err != nil {
				return err
			}
		case rest[0] == '<' && len(rest) > 1 && isLower(rest[1]):
			s.rawTag()
		default:
			s.emit(s.pos + 1)
		}
	}

	if len(s.stack) > 1 {
		open := s.top()
		return &CompileError{Line: open.line, Component: open.name, Err: ErrUnclosedComponent}
	}
	s.flush()
	return nil
}

// handleFenceLine consumes the current line when it opens, closes or sits
// inside a fenced code block.
func (s *scanner) handleFenceLine() bool {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src)
	} else {
		end = s.pos + end + 1
	}
	line := strings.TrimRight(s.src[s.pos:end], "\r\n")

	if m := fencePattern.FindStringSubmatch(line); m != nil {
		marker := m[1]
		switch {
		case s.fence == "":
			s.fence = marker
		case marker[0] == s.fence[0] && len(marker) >= len(s.fence) &&
			strings.TrimSpace(line[strings.Index(line, marker)+len(marker):]) == "":
			s.fence = ""
		}
		s.emit(end)
		return true
	}
	if s.fence != "" {
		s.emit(end)
		return true
	}
	return false
}

func (s *scanner) openTag() error {
	start := s.pos
	line := s.line
	i := start + 1
	for i < len(s.src) && isNameChar(s.src[i]) {
		i++
	}
	name := s.src[start+1 : i]
	props := map[string]string{}

	malformed := func(reason string) error {
		return &CompileError{Line: line, Component: name, Err: ErrMalformedTag, Reason: reason}
	}

	selfClosing := false
	for {
		i = skipSpace(s.src, i)
		if i >= len(s.src) {
			return malformed("unterminated tag")
		}
		if s.src[i] == '>' {
			i++
			break
		}
		if strings.HasPrefix(s.src[i:], "/>") {
			selfClosing = true
			i += 2
			break
		}

		attrStart := i
		for i < len(s.src) && isAttrChar(s.src[i]) {
			i++
		}
		if i == attrStart {
			return malformed(fmt.Sprintf("unexpected %q in attributes", s.src[i]))
		}
		attr := s.src[attrStart:i]

		j := skipSpace(s.src, i)
		if j >= len(s.src) || s.src[j] != '=' {
			props[attr] = "true"
			continue
		}
		i = skipSpace(s.src, j+1)
		if i >= len(s.src) {
			return malformed("unterminated tag")
		}

		switch s.src[i] {
		case '"', '\'':
			end := strings.IndexByte(s.src[i+1:], s.src[i])
			if end < 0 {
				return malformed(fmt.Sprintf("unterminated value for %s", attr))
			}
			props[attr] = s.src[i+1 : i+1+end]
			i += end + 2
		case '{':
			end, ok := matchBrace(s.src, i)
			if !ok {
				return malformed(fmt.Sprintf("unterminated expression for %s", attr))
			}
			props[attr] = evalExpression(s.src[i+1 : end])
			i = end + 1
		default:
			return malformed(fmt.Sprintf("attribute %s needs a quoted or {expression} value", attr))
		}
	}

	s.flush()
	s.skip(i)
	el := &node{kind: elementNode, name: name, props: props, line: line}
	parent := s.top()
	parent.children = append(parent.children, el)
	if !selfClosing {
		s.stack = append(s.stack, el)
		el.inline = true
	}
	return nil
}

func (s *scanner) closeTag() error {
	line := s.line
	i := s.pos + 2
	for i < len(s.src) && isNameChar(s.src[i]) {
		i++
	}
	name := s.src[s.pos+2 : i]
	i = skipSpace(s.src, i)
	if i >= len(s.src) || s.src[i] != '>' {
		return &CompileError{Line: line, Component: name, Err: ErrMalformedTag, Reason: "unterminated closing tag"}
	}
	if len(s.stack) == 1 {
		return &CompileError{Line: line, Component: name, Err: ErrUnexpectedClose}
	}
	open := s.top()
	if open.name != name {
		return &CompileError{
			Line:      line,
			Component: name,
			Err:       ErrUnexpectedClose,
			Reason:    fmt.Sprintf("expected </%s> for the tag opened at line %d", open.name, open.line),
		}
	}

	s.flush()
	open.inline = open.line == line
	s.stack = s.stack[:len(s.stack)-1]
	s.skip(i + 1)
	return nil
}

// rawTag copies a lowercase HTML/JSX tag, translating JSX attribute spellings.
func (s *scanner) rawTag() {
	end := -1
	quote := byte(0)
	depth := 0
scan:
	for i := s.pos + 1; i < len(s.src); i++ {
		c := s.src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
		case c == '>' && depth <= 0:
			end = i + 1
			break scan
		case c == '\n' && i+1 < len(s.src) && s.src[i+1] == '\n':
			break scan
		}
	}
	if end < 0 {
		s.emit(s.pos + 1)
		return
	}

	tag := s.src[s.pos:end]
	tag = classNamePattern.ReplaceAllString(tag, "${1}class=")
	tag = htmlForPattern.ReplaceAllString(tag, "${1}for=")
	tag = exprStringPattern.ReplaceAllString(tag, `="$1"`)
	s.line += strings.Count(s.src[s.pos:end], "\n")
	s.text.WriteString(tag)
	s.pos = end
}

// codeSpanLength returns the length of the code span starting at rest, or the
// length of the backtick run when it is never closed.
func codeSpanLength(rest string) int {
	n := 0
	for n < len(rest) && rest[n] == '`' {
		n++
	}
	for i := n; i < len(rest); {
		if rest[i] != '`' {
			i++
			continue
		}
		j := i
		for j < len(rest) && rest[j] == '`' {
			j++
		}
		if j-i == n {
			return j
		}
		i = j
	}
	return n
}

// matchBrace returns the index of the brace closing the one at open.
func matchBrace(src string, open int) (int, bool) {
	depth := 0
	quote := byte(0)
	for i := open; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// evalExpression resolves literal prop expressions. Anything that is not a
// string literal is kept as its trimmed source text.
func evalExpression(expr string) string {
	expr = strings.TrimSpace(expr)
	if len(expr) >= 2 {
		first, last := expr[0], expr[len(expr)-1]
		switch {
		case first == '"' && last == '"':
			if v, err := strconv.Unquote(expr); err == nil {
				return v
			}
			return expr[1 : len(expr)-1]
		case (first == '\'' && last == '\'') || (first == '`' && last == '`' && !strings.Contains(expr, "${")):
			return expr[1 : len(expr)-1]
		}
	}
	return expr
}

func skipSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func isNameChar(c byte) bool {
	return isUpper(c) || isLower(c) || (c >= '0' && c <= '9') || c == '_' || c == '.'
}

func isAttrChar(c byte) bool {
	return isNameChar(c) || c == '-' || c == ':' || c == '@'
}
