package filter

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/a11yfix/pkg/cleaner"
)

func appender(name, suffix string) cleaner.Cleaner {
	return cleaner.NewFunc(name, func(s string) (string, error) {
		return s + suffix, nil
	})
}

func TestRegistry_PriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(HookContent, 20, appender("late", "3"))
	r.Add(HookContent, 10, appender("early", "1"))
	r.Add(HookContent, 10, appender("early-second", "2"))

	out, err := r.Apply(HookContent, "x")
	require.NoError(t, err)
	assert.Equal(t, "x123", out)

	chain, err := r.Lookup(HookContent)
	require.NoError(t, err)
	assert.Equal(t, "chain(early->early-second->late)", chain.Name())
}

func TestRegistry_UnknownHook(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("the_title")
	assert.True(t, errors.Is(err, ErrUnknownHook))

	out, err := r.Apply("the_title", "<b>x</b>")
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>", out, "unknown hooks pass content through")
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add(HookContent, 10, appender("a", "a"))
	r.Add(HookContent, 10, appender("b", "b"))

	assert.True(t, r.Remove(HookContent, "a"))
	assert.False(t, r.Remove(HookContent, "a"))

	out, err := r.Apply(HookContent, "")
	require.NoError(t, err)
	assert.Equal(t, "b", out)

	assert.True(t, r.Remove(HookContent, "b"))
	assert.False(t, r.Has(HookContent))
	assert.Empty(t, r.Hooks())
}

func TestRegistry_ErrorStopsChain(t *testing.T) {
	r := NewRegistry()
	r.Add(HookContent, 1, cleaner.NewFunc("broken", func(string) (string, error) {
		return "", errors.New("boom")
	}))
	r.Add(HookContent, 2, appender("never", "!"))

	_, err := r.Apply(HookContent, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
}

func TestRegistry_Defaults(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{HookContent, HookExcerpt}, r.Hooks())

	for _, hook := range r.Hooks() {
		out, err := r.Apply(hook, `<h3></h3><i>note</i><iframe src="https://player.vimeo.com/video/1"></iframe>`)
		require.NoError(t, err)
		assert.Equal(t, `<em>note</em><iframe src="https://player.vimeo.com/video/1" title="Video"></iframe>`, out, hook)
	}
}

func TestRegistry_DefaultsRunAfterOtherFilters(t *testing.T) {
	r := Default()
	r.Add(HookContent, 10, cleaner.NewFunc("shortcode", func(s string) (string, error) {
		return strings.ReplaceAll(s, "[bold]", "<b>"), nil
	}))

	out, err := r.Apply(HookContent, "[bold]hi</b>")
	require.NoError(t, err)
	assert.Equal(t, "<strong>hi</strong>", out)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := Default()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.Add("custom", i, cleaner.NewNoop())
				return
			}
			out, err := r.Apply(HookContent, "<b>x</b>")
			assert.NoError(t, err)
			assert.Equal(t, "<strong>x</strong>", out)
		}(i)
	}
	wg.Wait()

	assert.True(t, r.Has("custom"))
}
