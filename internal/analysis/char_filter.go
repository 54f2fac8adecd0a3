package analysis

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// CharFilter is a pure string-to-string transform applied to raw field text
// before tokenization.
type CharFilter interface {
	Filter(string) string
}

// HTMLStripCharFilter removes markup from the input using a real HTML parser
// rather than a regex, so entity-encoded content ("AT&amp;T") is decoded
// instead of corrupted. Text inside <script> and <style> elements is dropped
// entirely. Tags act as token boundaries: the text segments they separated are
// rejoined with a single space.
type HTMLStripCharFilter struct{}

// Filter returns the visible text content of s.
func (HTMLStripCharFilter) Filter(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s // nothing to strip or decode
	}

	root, err := html.Parse(bytes.NewReader([]byte(s)))
	if err != nil {
		return s
	}

	var segments []string
	var skipDepth int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (strings.EqualFold(n.Data, "script") || strings.EqualFold(n.Data, "style")) {
			skipDepth++
		}

		if skipDepth == 0 && n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				segments = append(segments, text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && (strings.EqualFold(n.Data, "script") || strings.EqualFold(n.Data, "style")) {
			skipDepth--
		}
	}
	walk(root)

	return strings.Join(segments, " ")
}

// MappingCharFilter applies literal string replacements before tokenization,
// configured as "old=>new" pairs. Replacements are applied in one pass and do
// not cascade onto each other's output.
type MappingCharFilter struct {
	replacer *strings.Replacer
}

// NewMappingCharFilter parses "old=>new" pairs. The left side must be
// non-empty; the right side may be empty to delete the sequence.
func NewMappingCharFilter(pairs []string) (*MappingCharFilter, error) {
	oldnew := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		old, replacement, found := strings.Cut(pair, "=>")
		if !found || old == "" {
			return nil, fmt.Errorf("malformed mapping %q, want \"old=>new\"", pair)
		}
		oldnew = append(oldnew, old, replacement)
	}
	return &MappingCharFilter{replacer: strings.NewReplacer(oldnew...)}, nil
}

// Filter applies all configured replacements to s.
func (f *MappingCharFilter) Filter(s string) string {
	return f.replacer.Replace(s)
}
