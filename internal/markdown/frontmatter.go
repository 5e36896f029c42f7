package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/adrg/frontmatter"

	blockmeta "github.com/goliatone/go-blog/internal/frontmatter"
)

// ParseFrontMatter extracts YAML metadata and the Markdown body from source.
// Values that cannot be expressed as a string or a list of strings, such as
// nested mappings, are dropped and their keys returned in skipped.
func ParseFrontMatter(source []byte) (meta blockmeta.Frontmatter, body []byte, skipped []string, err error) {
	raw := map[string]any{}
	body, err = frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	meta = blockmeta.Frontmatter{}
	for key, value := range raw {
		if !blockmeta.ValidKey(key) {
			skipped = append(skipped, key)
			continue
		}
		projected, ok := projectValue(value)
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		meta.Set(key, projected)
	}
	slices.Sort(skipped)
	return meta, body, skipped, nil
}

func projectValue(value any) (blockmeta.Value, bool) {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			text, ok := scalarText(item)
			if !ok {
				return blockmeta.Value{}, false
			}
			items = append(items, text)
		}
		return blockmeta.List(items...), true
	case []string:
		return blockmeta.List(v...), true
	}
	text, ok := scalarText(value)
	if !ok {
		return blockmeta.Value{}, false
	}
	return blockmeta.Scalar(text), true
}

func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return formatDate(v), true
	}
	return "", false
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
