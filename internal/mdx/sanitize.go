package mdx

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// NewSanitizer returns the policy applied when sanitisation is requested: user
// generated content rules plus the markup emitted by the default components.
func NewSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[\w\- ]+$`)).Globally()
	p.AllowAttrs("role").Matching(regexp.MustCompile(`^[a-z]+$`)).Globally()
	p.AllowElements("aside", "figure", "figcaption", "details", "summary", "nav")
	p.AllowAttrs("open").OnElements("details")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^(lazy|eager)$`)).OnElements("img", "iframe")
	p.AllowAttrs("src").Matching(regexp.MustCompile(`^https://www\.youtube-nocookie\.com/embed/[\w\-]+$`)).OnElements("iframe")
	p.AllowAttrs("title", "allowfullscreen").OnElements("iframe")
	return p
}
