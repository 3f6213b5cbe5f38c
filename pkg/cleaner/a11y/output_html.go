package a11y

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosssi/gohtml"
)

// doctypeRegex matches a leading doctype declaration.
var doctypeRegex = regexp.MustCompile(`^<!DOCTYPE.+?>`)

var wrapperReplacer = strings.NewReplacer(
	"<html>", "",
	"</html>", "",
	"<body>", "",
	"</body>", "",
)

// StripDocumentWrapper removes a leading doctype and literal <html>/<body>
// wrapper tags so that the output stays a fragment.
func StripDocumentWrapper(s string) string {
	return doctypeRegex.ReplaceAllString(wrapperReplacer.Replace(s), "")
}

// htmlOutput serializes the fragment and applies the string passes.
func (c *Cleaner) htmlOutput(doc *goquery.Document, result *Result) (string, error) {
	// Get HTML from body (skip the wrapper the fragment was parsed into)
	html, err := doc.Find("body").First().Html()
	if err != nil {
		return "", err
	}

	html = StripDocumentWrapper(html)

	if c.config.NormalizeTags && c.config.TagMode != TagModeTree {
		var counts map[string]int
		html, counts = normalizeTags(html)
		if phase := result.Stats.GetPhase(PhaseTags); phase != nil {
			for tag, n := range counts {
				phase.Seen += n
				phase.Changes += n
				phase.Details[tag] += n
			}
		}
	}

	if c.config.Pretty {
		html = gohtml.Format(html)
	}

	return html, nil
}
