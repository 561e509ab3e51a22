// Package report encodes hits for machines: one JSON array, or one JSON
// object per line as hits arrive.
package report

import (
	"io"

	"github.com/agentic-research/litgrep/api"
	"github.com/ohler55/ojg/oj"
)

// Simple converts a hit to ojg simple data.
func Simple(h api.Hit) map[string]any {
	return map[string]any{
		"file":       h.File,
		"kind":       string(h.Kind),
		"text":       h.Text,
		"start_byte": int64(h.StartByte),
		"end_byte":   int64(h.EndByte),
		"start":      position(h.Start),
		"end":        position(h.End),
	}
}

func position(p api.Position) map[string]any {
	return map[string]any{
		"row":    int64(p.Row),
		"column": int64(p.Column),
	}
}

// Encode renders hits as an indented JSON array.
func Encode(hits []api.Hit) string {
	list := make([]any, 0, len(hits))
	for _, h := range hits {
		list = append(list, Simple(h))
	}
	return oj.JSON(list, &oj.Options{Indent: 2, Sort: true})
}

// Writer emits hits as JSON.
type Writer struct {
	out   io.Writer
	lines bool
	hits  []api.Hit
}

// NewWriter returns a Writer. With lines set every hit is written
// immediately as a single-line object; otherwise hits are buffered and
// written as one array on Close.
func NewWriter(out io.Writer, lines bool) *Writer {
	return &Writer{out: out, lines: lines}
}

// Add records one hit.
func (w *Writer) Add(h api.Hit) error {
	if !w.lines {
		w.hits = append(w.hits, h)
		return nil
	}
	_, err := io.WriteString(w.out, oj.JSON(Simple(h), &oj.Options{Sort: true})+"\n")
	return err
}

// Close flushes buffered hits.
func (w *Writer) Close() error {
	if w.lines {
		return nil
	}
	_, err := io.WriteString(w.out, Encode(w.hits)+"\n")
	return err
}
