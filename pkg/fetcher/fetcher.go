// Package fetcher retrieves published pages so their rendered content can be
// run through the accessibility filter.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns "static" or "dynamic".
	Type() string
}

// Mode selects a fetcher implementation.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string

	// Selector picks the element whose inner HTML becomes Content.Body.
	// Defaults to "body".
	Selector string

	// MaxBodySize limits the response size in bytes (static fetcher only).
	MaxBodySize int
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string // full document
	Body        string // inner HTML of the selected element
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// ErrEmptyBody is returned when the selected element is missing or empty.
var ErrEmptyBody = errors.New("selected element is empty")

// Config holds settings shared by both fetchers.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// New creates a fetcher for the given mode.
func New(mode Mode, cfg Config) (Fetcher, error) {
	switch mode {
	case ModeStatic, "":
		return NewStatic(cfg), nil
	case ModeDynamic:
		return NewDynamic(cfg)
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}
}

// extract fills Title and Body from the fetched document.
func extract(content *Content, selector string) error {
	if selector == "" {
		selector = "body"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.HTML))
	if err != nil {
		return err
	}

	if content.Title == "" {
		content.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	body, err := doc.Find(selector).First().Html()
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyBody, selector)
	}
	content.Body = body
	return nil
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
