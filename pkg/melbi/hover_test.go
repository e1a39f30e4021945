package melbi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoverReturnsInnermostSpan(t *testing.T) {
	core := New()
	source := "1 + 2 * 3"
	compiled, err := core.Compile(source)
	require.NoError(t, err)

	offset := strings.Index(source, "2")
	info, ok := compiled.Hover(offset)
	require.True(t, ok)
	assert.Equal(t, "Int", info.Type)
}

func TestHoverOutOfRangeOffset(t *testing.T) {
	core := New()
	compiled, err := core.Compile("1 + 2")
	require.NoError(t, err)

	_, ok := compiled.Hover(1000)
	assert.False(t, ok)
}

func TestHoverWholeExpression(t *testing.T) {
	core := New()
	compiled, err := core.Compile("1 + 2")
	require.NoError(t, err)

	info, ok := compiled.Hover(0)
	require.True(t, ok)
	assert.Equal(t, "Int", info.Type)
}
