package api

// Kind is the syntactic kind of a matched literal.
type Kind string

const (
	// KindString is a plain quoted string literal.
	KindString Kind = "string"
	// KindTemplate is a template literal with optional interpolation holes.
	KindTemplate Kind = "template_string"
)

// Position is a zero-based row/column pair. Column counts bytes.
type Position struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// Hit is one reported match.
// It carries everything a renderer needs to slice the source and print
// context lines, so the syntax tree can be released once a file is done.
type Hit struct {
	// File is slash-separated and relative to the search root.
	File string `json:"file"`
	Kind Kind   `json:"kind"`
	// Text is the literal exactly as written, delimiters included.
	Text      string   `json:"text"`
	StartByte uint32   `json:"start_byte"`
	EndByte   uint32   `json:"end_byte"`
	Start     Position `json:"start"`
	End       Position `json:"end"`
}
