// Package filter attaches cleaners to named content hooks. Each hook runs
// its cleaners in ascending priority order; cleaners with equal priority run
// in the order they were added.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jmylchreest/a11yfix/pkg/cleaner"
	"github.com/jmylchreest/a11yfix/pkg/cleaner/a11y"
)

// Well-known hooks.
const (
	HookContent = "the_content"
	HookExcerpt = "the_excerpt"
)

// DefaultPriority runs the accessibility filter after other content filters.
const DefaultPriority = 999

// ErrUnknownHook is returned by Lookup for a hook with no cleaners.
var ErrUnknownHook = errors.New("unknown hook")

type entry struct {
	priority int
	seq      uint64
	cleaner  cleaner.Cleaner
}

// Registry maps hook names to prioritized cleaners. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string][]entry
	seq   uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string][]entry)}
}

// Add attaches c to hook at the given priority.
func (r *Registry) Add(hook string, priority int, c cleaner.Cleaner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entries := append(r.hooks[hook], entry{priority: priority, seq: r.seq, cleaner: c})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	r.hooks[hook] = entries
}

// Remove detaches every cleaner with the given name from hook and reports
// whether anything was removed. A hook left empty is forgotten.
func (r *Registry) Remove(hook, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.hooks[hook]
	kept := entries[:0]
	for _, e := range entries {
		if e.cleaner.Name() != name {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(entries)
	if len(kept) == 0 {
		delete(r.hooks, hook)
	} else {
		r.hooks[hook] = kept
	}
	return removed
}

// Has reports whether any cleaner is attached to hook.
func (r *Registry) Has(hook string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[hook]) > 0
}

// Hooks returns the registered hook names, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the cleaners attached to hook as a chain.
func (r *Registry) Lookup(hook string) (*cleaner.ChainCleaner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.hooks[hook]
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	cleaners := make([]cleaner.Cleaner, len(entries))
	for i, e := range entries {
		cleaners[i] = e.cleaner
	}
	return cleaner.NewChain(cleaners...), nil
}

// Apply runs the cleaners attached to hook over content. Content for a hook
// with no cleaners is returned unchanged.
func (r *Registry) Apply(hook, content string) (string, error) {
	chain, err := r.Lookup(hook)
	if errors.Is(err, ErrUnknownHook) {
		return content, nil
	}
	return chain.Clean(content)
}

// RegisterDefaults attaches c to the content and excerpt hooks at
// DefaultPriority. A nil c registers the default accessibility cleaner.
func (r *Registry) RegisterDefaults(c cleaner.Cleaner) {
	if c == nil {
		c = a11y.New(nil)
	}
	r.Add(HookContent, DefaultPriority, c)
	r.Add(HookExcerpt, DefaultPriority, c)
}

// Default returns a registry with the default accessibility cleaner
// registered.
func Default() *Registry {
	r := NewRegistry()
	r.RegisterDefaults(nil)
	return r
}
