package a11y

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/a11yfix/internal/logger"
)

// IframeRule maps a substring of an iframe src to the title it should carry.
type IframeRule struct {
	Match string `json:"match" yaml:"match" mapstructure:"match" validate:"required"`
	Title string `json:"title" yaml:"title" mapstructure:"title" validate:"required"`
}

// Matches reports whether src contains the rule's substring. Matching is
// case-sensitive and does not parse the URL.
func (r IframeRule) Matches(src string) bool {
	return strings.Contains(src, r.Match)
}

func builtinRules(relayHost string) []IframeRule {
	return []IframeRule{
		{Match: "//calendar.google.com", Title: "Calendar"},
		{Match: "//www.youtube.com", Title: "Video"},
		{Match: "//player.vimeo.com", Title: "Video"},
		{Match: "//" + relayHost, Title: "Video"},
		{Match: "//www.slideshare.net", Title: "Slides"},
		{Match: "//docs.google.com", Title: "Embedded document"},
	}
}

var defaultRules = builtinRules(DefaultRelayHost)

// DefaultIframeRules returns a copy of the built-in rule table, in
// evaluation order.
func DefaultIframeRules() []IframeRule {
	return slices.Clone(defaultRules)
}

// titleFor returns the title of the first rule matching src.
func titleFor(rules []IframeRule, src string) (string, bool) {
	for _, r := range rules {
		if r.Matches(src) {
			return r.Title, true
		}
	}
	return "", false
}

// annotateIframes strips frameborder from every iframe and titles the ones
// that have no title yet.
func (c *Cleaner) annotateIframes(doc *goquery.Document, phase *PhaseStats) {
	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		phase.Seen++

		if _, ok := s.Attr("frameborder"); ok {
			s.RemoveAttr("frameborder")
			phase.record("frameborder")
		}

		if title, ok := s.Attr("title"); ok && title != "" {
			return
		}

		src, _ := s.Attr("src")
		title, ok := titleFor(c.rules, src)
		if !ok {
			return
		}
		s.SetAttr("title", title)
		phase.record("title:" + title)

		if c.config.Debug {
			logger.Debug("iframe titled", "src", src, "title", title)
		}
	})
}
