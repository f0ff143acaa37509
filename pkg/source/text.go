package source

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textCleaner strips markup from upstream strings, some project names carry <font>/<br> tags
type textCleaner struct {
	policy *bluemonday.Policy
}

func newTextCleaner() *textCleaner {
	return &textCleaner{policy: bluemonday.StrictPolicy()}
}

// markupRe matches complete tags and comments, anything else starting with "<" is plain text
var markupRe = regexp.MustCompile(`<!--[\s\S]*?-->|</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`)

// clean removes tags, decodes entities and collapses whitespace.
// A "<" that does not start a complete tag is kept, e.g. "面积<100" or "A<B工程".
func (c *textCleaner) clean(s string) string {
	s = html.UnescapeString(c.policy.Sanitize(escapeStrayLT(s)))
	return strings.Join(strings.Fields(s), " ")
}

// escapeStrayLT escapes every "<" outside complete tags so the sanitizer doesn't read it as a tag start
func escapeStrayLT(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	last := 0
	for _, loc := range markupRe.FindAllStringIndex(s, -1) {
		b.WriteString(strings.ReplaceAll(s[last:loc[0]], "<", "&lt;"))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return b.String()
}

// resolveLink turns a scraped href into an absolute URL.
// Absolute links are kept, root-relative ones are prefixed with the base URL,
// everything else is a client-side route and goes after the fragment marker.
func resolveLink(baseURL, href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	default:
		return baseURL + "/#" + strings.TrimPrefix(href, "#")
	}
}
