// Package markup parses the backend's lightweight emphasis markup.
//
// The only recognised construct is [b]...[/b]. Everything else, including
// HTML, is plain text and is escaped by the renderer.
package markup

import "strings"

const (
	openTag  = "[b]"
	closeTag = "[/b]"
)

// Segment is a run of text, optionally emphasized.
type Segment struct {
	Text       string
	Emphasized bool
}

// Parse splits s into segments. Matching is non-greedy: each [b] pairs with
// the nearest following [/b]. An unterminated [b] is kept as literal text.
func Parse(s string) []Segment {
	var out []Segment
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			out = append(out, Segment{Text: plain.String()})
			plain.Reset()
		}
	}

	for len(s) > 0 {
		start := strings.Index(s, openTag)
		if start < 0 {
			plain.WriteString(s)
			break
		}
		rest := s[start+len(openTag):]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			plain.WriteString(s)
			break
		}
		plain.WriteString(s[:start])
		flush()
		if end > 0 {
			out = append(out, Segment{Text: rest[:end], Emphasized: true})
		}
		s = rest[end+len(closeTag):]
	}
	flush()
	return out
}

// Plain returns s with all recognised markup removed.
func Plain(s string) string {
	var b strings.Builder
	for _, seg := range Parse(s) {
		b.WriteString(seg.Text)
	}
	return b.String()
}
