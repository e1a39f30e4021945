package melbi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionsOffersGlobals(t *testing.T) {
	core := New()
	require.NoError(t, core.Set("answer", int64(42)))

	items := core.Completions("", 0)
	found := false
	for _, item := range items {
		if item.Label == "answer" && item.Kind == "global" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompletionsOffersLocalBindings(t *testing.T) {
	core := New()
	source := "a + b where { a = 1, b = 2 }"
	items := core.Completions(source, len(source))

	labels := map[string]bool{}
	for _, item := range items {
		labels[item.Label] = true
	}
	assert.True(t, labels["a"])
	assert.True(t, labels["b"])
}

func TestCompletionsFieldAfterDot(t *testing.T) {
	core := New()
	source := `Record { x: 1, y: 2 }.`
	items := core.Completions(source, len(source))
	labels := map[string]bool{}
	for _, item := range items {
		labels[item.Label] = true
		assert.Equal(t, "field", item.Kind)
	}
	assert.True(t, labels["x"])
	assert.True(t, labels["y"])
}
