// Package label converts composite taxon labels such as
// "(Species) Cladonia rangiferina, (L.) F.H.Wigg." into a canonical name
// and an author string and back.
package label

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Label is a parsed taxon label.
type Label struct {
	// Rank is the text of the leading "(rank)" annotation, if any.
	Rank string

	// Name is the canonical name.
	Name string

	// Author is nil when the label has no author part.
	Author *string
}

// Parse splits a label into rank, name and author. The label is split on
// its first comma, everything after it is the author verbatim. A label
// without a comma has no author.
func Parse(s string) (Label, error) {
	var res Label
	src := s
	s = norm.NFC.String(strings.TrimSpace(s))

	if strings.HasPrefix(s, "(") {
		end := strings.Index(s, ")")
		if end < 0 {
			return res, ParseError(src, "rank annotation is not closed")
		}
		res.Rank = strings.TrimSpace(s[1:end])
		s = strings.TrimSpace(s[end+1:])
	}

	name, author, hasComma := strings.Cut(s, ",")
	res.Name = strings.Join(strings.Fields(name), " ")
	if res.Name == "" {
		return res, ParseError(src, "name is missing")
	}

	if hasComma {
		author = strings.TrimSpace(author)
		if author != "" {
			res.Author = &author
		}
	}
	return res, nil
}

// Format builds a label from its parts. Empty rank and nil author are
// omitted.
func Format(rank, name string, author *string) string {
	var sb strings.Builder
	if rank != "" {
		sb.WriteString("(")
		sb.WriteString(rank)
		sb.WriteString(") ")
	}
	sb.WriteString(name)
	if author != nil && *author != "" {
		sb.WriteString(", ")
		sb.WriteString(*author)
	}
	return sb.String()
}

// String returns the label in its canonical form.
func (l Label) String() string {
	return Format(l.Rank, l.Name, l.Author)
}

// SplitLines splits multi-line input into trimmed lines, one value per
// line. Trailing empty lines are dropped, empty lines in the middle are
// kept as empty strings.
func SplitLines(text string) []string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Opt returns nil for an empty string and a pointer to s otherwise.
func Opt(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
