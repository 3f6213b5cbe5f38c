package a11y

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Observer is notified after every transform. It must not modify the result.
type Observer func(result *Result)

// Cleaner rewrites HTML fragments to fix accessibility defects.
// It implements the cleaner.Cleaner interface and is safe for concurrent use:
// every call parses into its own tree.
type Cleaner struct {
	config *Config
	rules  []IframeRule

	mu       sync.Mutex
	stats    *Stats
	observer Observer
}

// New creates a new Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Cleaner{
		config: config,
		rules:  config.Rules(),
	}
}

var defaultCleaner = New(nil)

// Transform applies every fix with the default configuration.
func Transform(html string) string {
	return defaultCleaner.CleanWithStats(html).Content
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "a11y"
}

// Config returns the configuration the cleaner was built with.
func (c *Cleaner) Config() *Config {
	return c.config
}

// Rules returns the iframe rules in evaluation order.
func (c *Cleaner) Rules() []IframeRule {
	out := make([]IframeRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Observer returns the function registered with SetObserver, or nil.
func (c *Cleaner) Observer() Observer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.observer
}

// SetObserver registers a function called after every transform.
func (c *Cleaner) SetObserver(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// Clean transforms the HTML fragment. Malformed input never produces an
// error; at worst the original content is returned.
func (c *Cleaner) Clean(html string) (string, error) {
	result := c.CleanWithStats(html)
	return result.Content, nil
}

// CleanWithStats performs the transform and returns detailed stats.
func (c *Cleaner) CleanWithStats(input string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(input)

	if input == "" {
		result.Stats.TotalDuration = time.Since(startTime)
		c.finish(result)
		return result
	}

	parseStart := time.Now()
	doc, err := parseFragment(input)
	result.Stats.ParseDuration = time.Since(parseStart)

	if err != nil {
		// Graceful degradation: return original content with warning
		result.Content = input
		result.Error = err
		result.AddWarning("parse", "HTML parse failed, returning original", err.Error())
		result.Stats.OutputBytes = len(input)
		result.Stats.TotalDuration = time.Since(startTime)
		c.finish(result)
		return result
	}

	transformStart := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	outputStart := time.Now()
	output, err := c.htmlOutput(doc, result)
	result.Stats.OutputDuration = time.Since(outputStart)

	if err != nil {
		result.Content = input
		result.Error = err
		result.AddWarning("output", "Output generation failed, returning original", err.Error())
		result.Stats.OutputBytes = len(input)
	} else {
		result.Content = output
		result.Stats.OutputBytes = len(output)
	}

	result.Stats.TotalDuration = time.Since(startTime)
	c.finish(result)

	return result
}

// Stats returns the stats from the last Clean operation.
func (c *Cleaner) Stats() *Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cleaner) finish(result *Result) {
	c.mu.Lock()
	c.stats = result.Stats
	observer := c.observer
	c.mu.Unlock()

	if observer != nil {
		observer(result)
	}
}

// transform runs the tree passes. They are independent of each other; tag
// renaming only runs here in tree mode.
func (c *Cleaner) transform(doc *goquery.Document, result *Result) {
	iframes := result.Stats.AddPhase(PhaseIframes, c.config.AnnotateIframes)
	if iframes.Enabled {
		c.annotateIframes(doc, iframes)
	}

	tables := result.Stats.AddPhase(PhaseTables, c.config.SummarizeTables)
	if tables.Enabled {
		c.summarizeTables(doc, tables, result)
	}

	headings := result.Stats.AddPhase(PhaseHeadings, c.config.RemoveEmptyHeadings)
	if headings.Enabled {
		c.removeEmptyHeadings(doc, headings)
	}

	tags := result.Stats.AddPhase(PhaseTags, c.config.NormalizeTags)
	if tags.Enabled && c.config.TagMode == TagModeTree {
		renameTagNodes(doc, tags)
	}
}

// leadingTableTag matches input that starts with a table-structure element,
// which the parser drops outside a matching context.
var leadingTableTag = regexp.MustCompile(`(?i)^\s*(?:<!--.*?-->\s*)*<(tr|td|th|thead|tbody|tfoot|caption|colgroup|col)[\s/>]`)

// contextFor returns the element the input should be parsed inside.
func contextFor(input string) *html.Node {
	a := atom.Body
	if m := leadingTableTag.FindStringSubmatch(input); m != nil {
		switch atom.Lookup([]byte(strings.ToLower(m[1]))) {
		case atom.Tr:
			a = atom.Tbody
		case atom.Td, atom.Th:
			a = atom.Tr
		case atom.Col:
			a = atom.Colgroup
		default:
			a = atom.Table
		}
	}
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

// parseFragment parses input in the context of a <body> element (or the
// table element its leading tag needs) and hangs the resulting nodes under a
// synthetic document, so that leading <script> or <style> content is not
// hoisted into a <head> and later lost. Scripting is off so that <noscript>
// content is parsed as markup.
func parseFragment(input string) (*goquery.Document, error) {
	nodes, err := html.ParseFragmentWithOptions(strings.NewReader(input), contextFor(input),
		html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.DocumentNode}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	root.AppendChild(body)
	for _, n := range nodes {
		body.AppendChild(n)
	}

	return goquery.NewDocumentFromNode(root), nil
}
