package graphviz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schell/teleform/dag"
)

func TestWriteIsDeterministic(t *testing.T) {
	g := dag.New[string]()
	g.Connect("b", "a")
	g.Connect("c", "a")

	attrs := func(v string) Attrs {
		return Attrs{"label": v}
	}

	var sb strings.Builder
	require.NoError(t, Write(g, attrs, &sb))

	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "digraph {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `a [label=a];`)
	assert.Contains(t, out, "b -> a;")
	assert.Contains(t, out, "c -> a;")

	// b sorts before c, so its edge line must come first.
	assert.Less(t, strings.Index(out, "b -> a"), strings.Index(out, "c -> a"))
}

func TestQuoteEscapesSpecialCharacters(t *testing.T) {
	assert.Equal(t, `plain`, quote("plain"))
	assert.Equal(t, `"has space"`, quote("has space"))
	assert.Equal(t, `"a\"b"`, quote(`a"b`))
}
