package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	keyPattern     = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_.-]*)[ \t]*:(.*)$`)
	keyNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
)

var listItemPattern = regexp.MustCompile(`^[ \t]+-[ \t]*(.*)$`)

// MalformedError describes a metadata block that could not be fully parsed.
// It never aborts a split; the affected text is returned as body instead.
type MalformedError struct {
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("frontmatter: malformed metadata block at line %d: %s", e.Line, e.Reason)
	}
	return "frontmatter: malformed metadata block: " + e.Reason
}

// Result is the outcome of Parse. Err is set when the block was malformed and
// part of it was degraded into Body.
type Result struct {
	Frontmatter Frontmatter
	Body        string
	Err         error
}

// Split separates the leading metadata block from the body. It never fails:
// input without a block yields empty metadata and the input as body.
func Split(raw string) (Frontmatter, string) {
	res := Parse(raw)
	return res.Frontmatter, res.Body
}

// Parse is Split with the degradation diagnostic exposed.
func Parse(raw string) Result {
	lines := splitLines(raw)
	if len(lines) == 0 || !isMarker(lines[0].text) {
		return Result{Frontmatter: Frontmatter{}, Body: raw}
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if isMarker(lines[i].text) {
			closing = i
			break
		}
	}
	if closing < 0 {
		return Result{
			Frontmatter: Frontmatter{},
			Body:        raw,
			Err:         &MalformedError{Line: 1, Reason: "unterminated metadata block"},
		}
	}

	body := raw[lines[closing].end:]
	fm := Frontmatter{}

	for i := 1; i < closing; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line.text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, value, consumed, err := parseEntry(lines[i:closing])
		if err != nil {
			fm.coerce()
			return Result{
				Frontmatter: fm,
				Body:        raw[line.start:lines[closing].start] + body,
				Err:         &MalformedError{Line: i + 1, Reason: err.Error()},
			}
		}
		fm[key] = value
		i += consumed - 1
	}

	fm.coerce()
	return Result{Frontmatter: fm, Body: body}
}

type line struct {
	text  string
	start int
	end   int
}

// splitLines indexes raw by line. end points past the newline.
func splitLines(raw string) []line {
	var out []line
	start := 0
	for start < len(raw) {
		idx := strings.IndexByte(raw[start:], '\n')
		if idx < 0 {
			out = append(out, line{text: raw[start:], start: start, end: len(raw)})
			break
		}
		end := start + idx + 1
		out = append(out, line{text: strings.TrimSuffix(raw[start:end-1], "\r"), start: start, end: end})
		start = end
	}
	return out
}

func isMarker(text string) bool {
	return strings.TrimPrefix(text, "\ufeff") == Marker
}

// parseEntry parses the entry starting at lines[0] and reports how many lines
// it consumed. A key with an empty value followed by indented "- item" lines
// is read as a list.
func parseEntry(lines []line) (string, Value, int, error) {
	match := keyPattern.FindStringSubmatch(lines[0].text)
	if match == nil {
		return "", Value{}, 0, fmt.Errorf("expected `key: value`, got %q", lines[0].text)
	}
	key := match[1]
	rest := strings.TrimSpace(match[2])

	if rest == "" {
		var items []string
		consumed := 1
		for _, next := range lines[1:] {
			item := listItemPattern.FindStringSubmatch(next.text)
			if item == nil {
				break
			}
			text, err := parseScalar(strings.TrimSpace(item[1]))
			if err != nil {
				return "", Value{}, 0, fmt.Errorf("%s: %w", key, err)
			}
			items = append(items, text)
			consumed++
		}
		if consumed > 1 {
			return key, List(items...), consumed, nil
		}
		return key, Scalar(""), 1, nil
	}

	value, err := parseValue(rest)
	if err != nil {
		return "", Value{}, 0, fmt.Errorf("%s: %w", key, err)
	}
	return key, value, 1, nil
}

func parseValue(text string) (Value, error) {
	if strings.HasPrefix(text, "[") {
		items, err := parseList(text)
		if err != nil {
			return Value{}, err
		}
		return List(items...), nil
	}
	scalar, err := parseScalar(text)
	if err != nil {
		return Value{}, err
	}
	return Scalar(scalar), nil
}

func parseScalar(text string) (string, error) {
	if text == "" {
		return "", nil
	}
	switch text[0] {
	case '"', '\'':
		value, n, err := readQuoted(text)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text[n:]) != "" {
			return "", fmt.Errorf("unexpected text after quoted value: %q", text[n:])
		}
		return value, nil
	case '{', '|', '>', '&', '*', '!':
		return "", fmt.Errorf("unsupported value %q", text)
	}
	return text, nil
}

// readQuoted reads a quoted string at the start of text and returns the
// decoded value and the number of bytes consumed.
func readQuoted(text string) (string, int, error) {
	quote := text[0]
	if quote == '\'' {
		var b strings.Builder
		for i := 1; i < len(text); i++ {
			if text[i] != '\'' {
				b.WriteByte(text[i])
				continue
			}
			if i+1 < len(text) && text[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			return b.String(), i + 1, nil
		}
		return "", 0, fmt.Errorf("unterminated quoted value")
	}

	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			value, err := strconv.Unquote(text[:i+1])
			if err != nil {
				return "", 0, fmt.Errorf("invalid quoted value %s", text[:i+1])
			}
			return value, i + 1, nil
		}
	}
	return "", 0, fmt.Errorf("unterminated quoted value")
}

func parseList(text string) ([]string, error) {
	items := []string{}
	rest := strings.TrimSpace(text[1:])
	if strings.HasPrefix(rest, "]") {
		if strings.TrimSpace(rest[1:]) != "" {
			return nil, fmt.Errorf("unexpected text after list")
		}
		return items, nil
	}

	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return nil, fmt.Errorf("unterminated list")
		}

		var item string
		if rest[0] == '"' || rest[0] == '\'' {
			value, n, err := readQuoted(rest)
			if err != nil {
				return nil, err
			}
			item, rest = value, rest[n:]
		} else {
			end := strings.IndexAny(rest, ",]")
			if end < 0 {
				return nil, fmt.Errorf("unterminated list")
			}
			item, rest = strings.TrimSpace(rest[:end]), rest[end:]
			if item == "" {
				return nil, fmt.Errorf("empty list item")
			}
		}
		items = append(items, item)

		rest = strings.TrimLeft(rest, " \t")
		switch {
		case strings.HasPrefix(rest, ","):
			rest = rest[1:]
		case strings.HasPrefix(rest, "]"):
			if strings.TrimSpace(rest[1:]) != "" {
				return nil, fmt.Errorf("unexpected text after list")
			}
			return items, nil
		default:
			return nil, fmt.Errorf("expected `,` or `]` in list")
		}
	}
}
