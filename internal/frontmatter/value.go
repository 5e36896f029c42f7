package frontmatter

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Marker delimits the metadata block. It must appear alone on a line.
const Marker = "---"

// Known metadata keys.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDate        = "date"
	KeyAuthor      = "author"
	KeyTags        = "tags"
	KeyLayout      = "layout"
	KeyAuthors     = "authors"
	KeySlug        = "slug"
)

var vocabulary = []string{
	KeyTitle,
	KeyDescription,
	KeyDate,
	KeyAuthor,
	KeyTags,
	KeyLayout,
	KeyAuthors,
	KeySlug,
}

// IsListKey reports whether values stored under key are always sequences.
func IsListKey(key string) bool {
	return key == KeyTags || key == KeyAuthors
}

// ValidKey reports whether key can be written to a metadata block.
func ValidKey(key string) bool {
	return keyNamePattern.MatchString(key)
}

// Value is a metadata value: either a scalar string or a list of strings.
type Value struct {
	Text  string
	Items []string
	List  bool
}

// Scalar builds a string value.
func Scalar(text string) Value {
	return Value{Text: text}
}

// List builds a sequence value. A call without items yields an empty, non-nil list.
func List(items ...string) Value {
	return Value{Items: append([]string{}, items...), List: true}
}

// Strings returns the value as a sequence. Scalars become one-element lists,
// the empty scalar becomes an empty list.
func (v Value) Strings() []string {
	if v.List {
		return append([]string{}, v.Items...)
	}
	if v.Text == "" {
		return []string{}
	}
	return []string{v.Text}
}

// String returns the scalar text, or the list items joined with ", ".
func (v Value) String() string {
	if v.List {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

func (v Value) asList() Value {
	if v.List {
		return List(v.Items...)
	}
	return List(v.Strings()...)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.List {
		return json.Marshal(v.Strings())
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch typed := raw.(type) {
	case nil:
		*v = Scalar("")
	case string:
		*v = Scalar(typed)
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			switch s := item.(type) {
			case string:
				items = append(items, s)
			case nil:
				continue
			default:
				items = append(items, fmt.Sprint(s))
			}
		}
		*v = List(items...)
	case map[string]any:
		return fmt.Errorf("frontmatter: nested objects are not supported")
	default:
		*v = Scalar(fmt.Sprint(typed))
	}
	return nil
}

// Frontmatter maps metadata keys to values. Keys outside the known vocabulary
// are carried as-is.
type Frontmatter map[string]Value

// Get returns the value stored under key.
func (f Frontmatter) Get(key string) (Value, bool) {
	v, ok := f[key]
	return v, ok
}

// String returns the text stored under key, empty when absent.
func (f Frontmatter) String(key string) string {
	return f[key].String()
}

// Strings returns the sequence stored under key, empty when absent.
func (f Frontmatter) Strings(key string) []string {
	v, ok := f[key]
	if !ok {
		return []string{}
	}
	return v.Strings()
}

// Set stores value under key, coercing tags and authors to sequences.
func (f Frontmatter) Set(key string, value Value) {
	if IsListKey(key) {
		value = value.asList()
	}
	f[key] = value
}

// Clone returns a deep copy.
func (f Frontmatter) Clone() Frontmatter {
	out := make(Frontmatter, len(f))
	for key, value := range f {
		if value.List {
			value = List(value.Items...)
		}
		out[key] = value
	}
	return out
}

// Keys returns the keys in serialization order: the known vocabulary first,
// then remaining keys alphabetically.
func (f Frontmatter) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, key := range vocabulary {
		if _, ok := f[key]; ok {
			keys = append(keys, key)
		}
	}
	extra := make([]string, 0, len(f))
	for key := range maps.Keys(f) {
		if !slices.Contains(vocabulary, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

func (f Frontmatter) coerce() {
	for key, value := range f {
		if IsListKey(key) && !value.List {
			f[key] = value.asList()
		}
	}
}
