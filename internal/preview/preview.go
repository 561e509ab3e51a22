// Package preview prints hits as line-numbered, colorized source excerpts.
package preview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentic-research/litgrep/api"
	"github.com/fatih/color"
)

// DefaultContext is the number of lines shown above and below a hit.
const DefaultContext = 2

// Loader returns the contents of a file named by a hit.
type Loader func(name string) ([]byte, error)

// Renderer writes one excerpt per hit.
type Renderer struct {
	Out     io.Writer
	Context int
	Load    Loader

	header *color.Color
	number *color.Color
	gutter *color.Color
	match  *color.Color

	// Hits arrive grouped by file, so remembering the last file is enough.
	lastName string
	lastSrc  []byte
}

// NewRenderer returns a Renderer. colorize forces escape codes on or off
// regardless of whether out is a terminal.
func NewRenderer(out io.Writer, context int, load Loader, colorize bool) *Renderer {
	r := &Renderer{
		Out:     out,
		Context: context,
		Load:    load,
		header:  color.New(color.FgMagenta),
		number:  color.New(color.FgGreen),
		gutter:  color.New(color.FgHiBlack),
		match:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{r.header, r.number, r.gutter, r.match} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render loads the hit's file and prints its excerpt.
func (r *Renderer) Render(h api.Hit) error {
	if h.File != r.lastName || r.lastSrc == nil {
		src, err := r.Load(h.File)
		if err != nil {
			return fmt.Errorf("load %s: %w", h.File, err)
		}
		r.lastName, r.lastSrc = h.File, src
	}
	return r.RenderSource(h, r.lastSrc)
}

// RenderSource prints the excerpt for h taken from src.
//
// The header is "file:line". Each excerpt line is prefixed with its one-based
// number, left-aligned to the widest number shown, and the matched span is
// highlighted even when it covers several lines.
func (r *Renderer) RenderSource(h api.Hit, src []byte) error {
	lines := strings.Split(string(src), "\n")
	startRow, endRow := int(h.Start.Row), int(h.End.Row)
	if startRow >= len(lines) || endRow >= len(lines) || endRow < startRow {
		return fmt.Errorf("hit %s:%d outside of source", h.File, startRow+1)
	}

	first := max(0, startRow-r.Context)
	last := min(len(lines)-1, endRow+r.Context)
	width := len(strconv.Itoa(last + 1))

	if _, err := fmt.Fprintln(r.Out, r.header.Sprintf("%s:%d", h.File, startRow+1)); err != nil {
		return err
	}
	for row := first; row <= last; row++ {
		text := lines[row]
		if row >= startRow && row <= endRow {
			lo, hi := 0, len(text)
			if row == startRow {
				lo = min(int(h.Start.Column), len(text))
			}
			if row == endRow {
				hi = min(int(h.End.Column), len(text))
			}
			hi = max(hi, lo)
			text = text[:lo] + r.match.Sprint(text[lo:hi]) + text[hi:]
		}
		num := r.number.Sprintf("%-*d", width, row+1)
		if _, err := fmt.Fprintf(r.Out, "%s %s %s\n", num, r.gutter.Sprint("|"), text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.Out)
	return err
}

// Done prints the closing line.
func (r *Renderer) Done() error {
	_, err := fmt.Fprintln(r.Out, "Done searching.")
	return err
}
