package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	l, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "javascript", l.Name)

	l, err = Lookup("TS")
	require.NoError(t, err)
	assert.Equal(t, "typescript", l.Name)

	_, err = Lookup("cobol")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	assert.Contains(t, err.Error(), "javascript, tsx, typescript")
}

func TestMatches(t *testing.T) {
	l, err := Lookup("javascript")
	require.NoError(t, err)

	assert.True(t, l.Matches("src/app.js"))
	assert.True(t, l.Matches("lib/mod.mjs"))
	assert.False(t, l.Matches("notes.txt"))
	assert.False(t, l.Matches("app.js.map"))
	assert.False(t, l.Matches("dir/.js"))
}

func TestWithExtensions(t *testing.T) {
	l, err := Lookup("javascript")
	require.NoError(t, err)

	only := l.WithExtensions([]string{"es6", " .jsm "})
	assert.Equal(t, []string{".es6", ".jsm"}, only.Extensions)
	assert.True(t, only.Matches("a.es6"))
	assert.False(t, only.Matches("a.js"))
	assert.Equal(t, []string{".js", ".mjs", ".cjs", ".jsx"}, l.Extensions, "receiver untouched")

	assert.Same(t, l, l.WithExtensions(nil))
}

func TestNewParser(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			l, err := Lookup(name)
			require.NoError(t, err)
			tree, err := NewParser(l).ParseCtx(context.Background(), nil, []byte("const x = `a${b}c`;\n"))
			require.NoError(t, err)
			assert.False(t, tree.RootNode().HasError())
		})
	}
}
