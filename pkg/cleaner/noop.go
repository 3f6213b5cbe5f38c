package cleaner

// NoopCleaner passes content through without modification.
// `a11yfix fix --passthrough` registers it on the content and excerpt hooks
// in place of the accessibility filter, so the same inputs, fetch settings
// and output paths can produce an unfiltered baseline to diff against.
type NoopCleaner struct{}

// NewNoop creates a new no-op cleaner.
func NewNoop() *NoopCleaner {
	return &NoopCleaner{}
}

// Clean returns the input unchanged.
func (c *NoopCleaner) Clean(html string) (string, error) {
	return html, nil
}

// Name returns the cleaner type.
func (c *NoopCleaner) Name() string {
	return "noop"
}
