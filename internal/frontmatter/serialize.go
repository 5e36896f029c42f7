package frontmatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned when a metadata key cannot be represented in a block.
var ErrInvalidKey = errors.New("frontmatter: invalid key")

// Serialize renders metadata and body back into a single blob. Scalars are
// written as double-quoted strings and sequences as `["a", "b"]`, with keys in
// Keys order. Empty metadata yields the body unchanged.
func Serialize(meta Frontmatter, body string) (string, error) {
	if len(meta) == 0 {
		return body, nil
	}

	var b strings.Builder
	b.WriteString(Marker)
	b.WriteByte('\n')
	for _, key := range meta.Keys() {
		if !keyNamePattern.MatchString(key) {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		value := meta[key]
		if IsListKey(key) {
			value = value.asList()
		}

		b.WriteString(key)
		b.WriteString(": ")
		if value.List {
			b.WriteByte('[')
			for i, item := range value.Items {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(strconv.Quote(item))
			}
			b.WriteByte(']')
		} else {
			b.WriteString(strconv.Quote(value.Text))
		}
		b.WriteByte('\n')
	}
	b.WriteString(Marker)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String(), nil
}
