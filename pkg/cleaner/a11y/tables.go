package a11y

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/a11yfix/internal/logger"
)

// descriptionClassPrefix is the class TablePress puts on a table's
// description span, minus the trailing table id.
const descriptionClassPrefix = "tablepress-table-description tablepress-table-description-id-"

// legacyIDOffset is len("tablepress tablepress-id-").
const legacyIDOffset = 25

var tableIDToken = regexp.MustCompile(`^tablepress-id-?(\w[\w-]*)$`)

// TableID extracts the TablePress id from a table class attribute using
// the given strategy. It returns "" when no id can be found.
func TableID(class string, strategy TableIDStrategy) string {
	if strategy == TableIDOffset {
		if len(class) <= legacyIDOffset {
			return ""
		}
		return class[legacyIDOffset:]
	}

	for _, token := range strings.Fields(class) {
		if m := tableIDToken.FindStringSubmatch(token); m != nil {
			return m[1]
		}
	}
	return ""
}

// DescriptionClass returns the exact class of the description element that
// belongs to the table with the given id.
func DescriptionClass(id string) string {
	return descriptionClassPrefix + id
}

// summarizeTables sets the summary attribute of TablePress tables from their
// description element. Tables without a description are left untouched.
func (c *Cleaner) summarizeTables(doc *goquery.Document, phase *PhaseStats, result *Result) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		class, _ := table.Attr("class")
		if !strings.Contains(class, "tablepress") {
			return
		}
		phase.Seen++

		id := TableID(class, c.config.TableIDStrategy)
		if id == "" {
			phase.note("no_id")
			result.AddWarning("transform", "TablePress table has no id", class)
			return
		}

		target := DescriptionClass(id)
		desc := doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("class")
			return v == target
		}).First()

		if desc.Length() == 0 {
			phase.note("missing")
			result.AddWarning("transform", "no description found for TablePress table", target)
			return
		}

		summary := desc.Text()
		table.SetAttr("summary", summary)
		phase.record("summary")

		if c.config.Debug {
			logger.Debug("table summarized", "table_id", id, "summary", summary)
		}
	})
}
