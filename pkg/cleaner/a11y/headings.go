package a11y

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/a11yfix/internal/logger"
)

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// removeEmptyHeadings detaches every heading whose text content is empty.
// Whitespace counts as text.
func (c *Cleaner) removeEmptyHeadings(doc *goquery.Document, phase *PhaseStats) {
	for _, tag := range headingTags {
		var empty []*goquery.Selection
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			phase.Seen++
			if len(s.Text()) == 0 {
				empty = append(empty, s)
			}
		})

		for _, s := range empty {
			s.Remove()
			phase.record(tag)
		}

		if c.config.Debug && len(empty) > 0 {
			logger.Debug("empty headings removed", "tag", tag, "count", len(empty))
		}
	}
}
