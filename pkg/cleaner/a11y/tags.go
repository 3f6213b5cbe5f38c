package a11y

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// openBoldRegex matches "<b" followed by a non-word character so that
	// <br>, <big> and <body> are left alone.
	openBoldRegex   = regexp.MustCompile(`(?i)<b(\W)`)
	openItalicRegex = regexp.MustCompile(`(?i)<i(\W)`)

	closingTagReplacer = strings.NewReplacer(
		"</b>", "</strong>",
		"</B>", "</strong>",
		"</i>", "</em>",
		"</I>", "</em>",
	)
)

// NormalizeTags rewrites <b> as <strong> and <i> as <em> in serialized HTML.
// Closing tags are replaced literally; opening tags keep their attributes and
// the delimiter that followed the tag name.
func NormalizeTags(s string) string {
	out, _ := normalizeTags(s)
	return out
}

// normalizeTags is NormalizeTags that also reports how many opening tags of
// each kind were rewritten.
func normalizeTags(s string) (string, map[string]int) {
	counts := make(map[string]int)

	s = closingTagReplacer.Replace(s)

	if n := len(openBoldRegex.FindAllStringIndex(s, -1)); n > 0 {
		counts["b"] = n
		s = openBoldRegex.ReplaceAllString(s, "<strong${1}")
	}
	if n := len(openItalicRegex.FindAllStringIndex(s, -1)); n > 0 {
		counts["i"] = n
		s = openItalicRegex.ReplaceAllString(s, "<em${1}")
	}

	return s, counts
}

// renameTagNodes renames HTML b and i elements in place. Attributes stay on
// the node; elements in foreign namespaces (svg, math) are skipped.
func renameTagNodes(doc *goquery.Document, phase *PhaseStats) {
	doc.Find("b, i").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if n.Type != html.ElementNode || n.Namespace != "" {
			return
		}
		phase.Seen++
		switch n.DataAtom {
		case atom.B:
			n.Data, n.DataAtom = "strong", atom.Strong
			phase.record("b")
		case atom.I:
			n.Data, n.DataAtom = "em", atom.Em
			phase.record("i")
		}
	})
}
