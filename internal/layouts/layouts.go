// Package layouts maps the layout identifier carried in post metadata onto the
// closed set of page variants and renders full pages for them.
package layouts

import "strings"

// Layout is a page variant. The set is closed; Select never yields anything else.
type Layout int

const (
	Standard Layout = iota
	Simple
	Banner
)

// Identifiers written into post metadata.
const (
	StandardID = "PostLayout"
	SimpleID   = "PostSimple"
	BannerID   = "PostBanner"
)

// DefaultID is the identifier applied when a post names no layout.
const DefaultID = StandardID

// All lists every variant in declaration order.
func All() []Layout {
	return []Layout{Standard, Simple, Banner}
}

// Select resolves an identifier to a variant. Matching is case-insensitive and
// accepts both the metadata identifiers and the short names; anything else
// selects Standard.
func Select(id string) Layout {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "postsimple", "simple":
		return Simple
	case "postbanner", "banner":
		return Banner
	default:
		return Standard
	}
}

// ID returns the metadata identifier of the variant.
func (l Layout) ID() string {
	switch l {
	case Simple:
		return SimpleID
	case Banner:
		return BannerID
	default:
		return StandardID
	}
}

// String returns the short name used in logs, metrics and template lookups.
func (l Layout) String() string {
	switch l {
	case Simple:
		return "simple"
	case Banner:
		return "banner"
	default:
		return "standard"
	}
}

func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.ID()), nil
}

func (l *Layout) UnmarshalText(text []byte) error {
	*l = Select(string(text))
	return nil
}
