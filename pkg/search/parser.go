package search

import (
	"strings"
	"unicode"
)

// Filters holds the slash filters pulled out of a search string and the
// free text that remains.
type Filters struct {
	Notebook string
	Tag      string
	Title    string
	Text     string
}

// ParseQuery extracts slash filters from the raw search string.
// Supported:
// /nb:<name> or /in:<name> -> notebook by name
// /tag:<name>              -> tag by name
// /title:<term>            -> substring of the title
// Anything else is free text, matched against title, content and tags.
// The free text keeps its inner whitespace; only filter tokens and the
// whitespace after them are cut, then the ends are trimmed.
func ParseQuery(raw string) Filters {
	filters := Filters{}
	var text strings.Builder

	rest := raw
	for rest != "" {
		start := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) })
		if start < 0 {
			text.WriteString(rest)
			break
		}
		end := strings.IndexFunc(rest[start:], unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		} else {
			end += start
		}

		if filters.apply(rest[start:end]) {
			text.WriteString(rest[:start])
			rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
			continue
		}
		text.WriteString(rest[:end])
		rest = rest[end:]
	}

	filters.Text = strings.TrimSpace(text.String())
	return filters
}

func (f *Filters) apply(token string) bool {
	lower := strings.ToLower(token)

	switch {
	case strings.HasPrefix(lower, "/nb:"):
		f.Notebook = token[len("/nb:"):]
	case strings.HasPrefix(lower, "/in:"):
		f.Notebook = token[len("/in:"):]
	case strings.HasPrefix(lower, "/tag:"):
		f.Tag = token[len("/tag:"):]
	case strings.HasPrefix(lower, "/title:"):
		f.Title = token[len("/title:"):]
	default:
		return false
	}
	return true
}

// Empty reports whether no filter and no text was given.
func (f Filters) Empty() bool {
	return f.Notebook == "" && f.Tag == "" && f.Title == "" && f.Text == ""
}
