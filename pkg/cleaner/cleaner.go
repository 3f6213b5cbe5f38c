// Package cleaner defines the filter contract shared by every HTML content
// rewriter in a11yfix. A cleaner receives a rendered HTML fragment and
// returns the rewritten fragment.
package cleaner

// Cleaner rewrites HTML content.
type Cleaner interface {
	// Clean rewrites the input fragment. Implementations should degrade
	// gracefully on malformed markup and reserve errors for failures the
	// caller can act on.
	Clean(html string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}

// Func adapts an ordinary function to the Cleaner interface.
type Func struct {
	name string
	fn   func(string) (string, error)
}

// NewFunc wraps fn as a named Cleaner.
func NewFunc(name string, fn func(string) (string, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Clean calls the wrapped function.
func (f *Func) Clean(html string) (string, error) {
	return f.fn(html)
}

// Name returns the name given to NewFunc.
func (f *Func) Name() string {
	return f.name
}
