package search

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/litgrep/api"
	"github.com/agentic-research/litgrep/internal/lang"
	"github.com/agentic-research/litgrep/internal/source"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newEngine(t *testing.T, root string, opts ...Option) *Engine {
	t.Helper()
	l, err := lang.Lookup("javascript")
	require.NoError(t, err)
	return NewEngine(source.Open(root), l, opts...)
}

func collect(t *testing.T, e *Engine, query string) []api.Hit {
	t.Helper()
	var hits []api.Hit
	for h, err := range e.Search(context.Background(), query) {
		require.NoError(t, err)
		hits = append(hits, h)
	}
	return hits
}

func TestSearchPlainString(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": `const x = "zzz"`})

	hits := collect(t, newEngine(t, root), "zzz")
	require.Len(t, hits, 1)
	assert.Equal(t, api.Hit{
		File:      "a.js",
		Kind:      api.KindString,
		Text:      `"zzz"`,
		StartByte: 10,
		EndByte:   15,
		Start:     api.Position{Row: 0, Column: 10},
		End:       api.Position{Row: 0, Column: 15},
	}, hits[0])
}

func TestSearchTemplate(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": "const x = `aaa${3}zzz`"})
	e := newEngine(t, root)

	hits := collect(t, e, "aaa garbage goes here zzz")
	require.Len(t, hits, 1)
	assert.Equal(t, api.KindTemplate, hits[0].Kind)

	assert.Empty(t, collect(t, e, "totally different"))
}

func TestSearchExtensionFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"code.js":   `f("needle")`,
		"notes.txt": `f("needle")`,
	})

	hits := collect(t, newEngine(t, root), "needle")
	require.Len(t, hits, 1)
	assert.Equal(t, "code.js", hits[0].File)
}

func TestSearchRelativePathsAndOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/b.js":     "f('x1')\nf('x2')\n",
		"src/lib/a.js": "g(`x${1}`)\n",
		"z.js":         "h(\"x3\")\n",
	})

	var files, texts []string
	for _, h := range collect(t, newEngine(t, root), "x") {
		files = append(files, h.File)
		texts = append(texts, h.Text)
	}
	assert.Equal(t, []string{"src/b.js", "src/b.js", "src/lib/a.js", "z.js"}, files)
	assert.Equal(t, []string{"'x1'", "'x2'", "`x${1}`", `"x3"`}, texts)
}

func TestSearchIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js":   "f('k'); g(`k${v}`)",
		"d/b.js": "const s = 'kk'",
	})
	e := newEngine(t, root)

	assert.Equal(t, collect(t, e, "k"), collect(t, e, "k"))
}

func TestSearchSkipsUnparsableFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "const = = ;\nlet y = \"zzz\"",
		"b.js": `const x = "zzz"`,
	})
	var logs bytes.Buffer
	e := newEngine(t, root, WithLogger(log.New(&logs)))

	hits := collect(t, e, "zzz")
	require.Len(t, hits, 1)
	assert.Equal(t, "b.js", hits[0].File)
	assert.Equal(t, Stats{Files: 2, Matched: 1, Skipped: 1, Hits: 1}, e.Stats())
	assert.Contains(t, logs.String(), "a.js")
	assert.Contains(t, logs.String(), "syntax error")
}

func TestSearchLenientSearchesBrokenFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "const = = ;\nlet y = \"zzz\"",
		"b.js": `const x = "zzz"`,
	})
	e := newEngine(t, root, WithStrict(false))

	hits := collect(t, e, "zzz")
	assert.NotEmpty(t, hits)
	assert.Zero(t, e.Stats().Skipped)
}

func TestSearchFailFast(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.js": "const = = ;",
		"b.js": `const x = "zzz"`,
	})
	e := newEngine(t, root, WithFailFast(true))

	var errs []error
	var hits []api.Hit
	for h, err := range e.Search(context.Background(), "zzz") {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hits = append(hits, h)
	}
	require.Len(t, errs, 1)
	assert.Empty(t, hits)
	assert.ErrorIs(t, errs[0], ErrParse)

	var fe *FileError
	require.ErrorAs(t, errs[0], &fe)
	assert.Equal(t, "a.js", fe.Path)
}

func TestSearchCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": `f("zzz")`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range newEngine(t, root).Search(ctx, "zzz") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestSearchEarlyStop(t *testing.T) {
	root := writeTree(t, map[string]string{"a.js": `f("z1", "z2", "z3")`})

	n := 0
	for range newEngine(t, root).Search(context.Background(), "z") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestFileMultiline(t *testing.T) {
	e := newEngine(t, t.TempDir())
	src := []byte("const x = `line one\n${v}\nline two`;\n")

	hits, err := e.File(context.Background(), "mem.js", src, "line one\nanything\nline two")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, api.Position{Row: 0, Column: 10}, hits[0].Start)
	assert.Equal(t, api.Position{Row: 2, Column: 9}, hits[0].End)
	assert.Equal(t, string(src[hits[0].StartByte:hits[0].EndByte]), hits[0].Text)
}

func TestSyntaxErrorPosition(t *testing.T) {
	e := newEngine(t, t.TempDir())

	_, err := e.File(context.Background(), "bad.js", []byte("let a = 1;\nlet b = (;\n"), "x")
	require.Error(t, err)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, uint32(1), se.Line)
	assert.ErrorIs(t, err, ErrParse)
}
