package match

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	sitter "github.com/smacker/go-tree-sitter"
)

// anything is the wildcard placed where an interpolation hole was.
const anything = "*"

// textKinds are template children that hold static text rather than mark a
// boundary. Newer grammars expose them as nodes; older ones leave the text
// between the markers unnamed. Either way the text lives between markers.
var textKinds = map[string]bool{
	"string_fragment": true,
	"escape_sequence": true,
}

// Segments returns the static text of a template literal: the raw source
// strictly between each pair of consecutive markers (the backtick delimiters
// and the ${...} substitutions).
func Segments(n *sitter.Node, src []byte) []string {
	var markers []*sitter.Node
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || textKinds[child.Type()] {
			continue
		}
		markers = append(markers, child)
	}

	if len(markers) < 2 {
		return nil
	}
	segments := make([]string, 0, len(markers)-1)
	for i := 0; i+1 < len(markers); i++ {
		start, end := markers[i].EndByte(), markers[i+1].StartByte()
		if end < start || int(end) > len(src) {
			segments = append(segments, "")
			continue
		}
		segments = append(segments, string(src[start:end]))
	}
	return segments
}

// Pattern builds the wildcard pattern for a template literal. Each static
// segment is quoted so that wildcard characters written in the source match
// only themselves, and the segments are joined with "*".
//
// `aaa${x}zzz` becomes "aaa*zzz"; a template with no holes becomes its quoted
// text and so only matches exactly.
func Pattern(n *sitter.Node, src []byte) string {
	return Join(Segments(n, src))
}

// Join quotes each segment and joins them with the "anything" wildcard.
func Join(segments []string) string {
	quoted := make([]string, len(segments))
	for i, s := range segments {
		quoted[i] = glob.QuoteMeta(s)
	}
	return strings.Join(quoted, anything)
}

// Wildcard reports whether query conforms to the template segments end to
// end: the first segment, anything, the second, and so on up to the last.
// Prefix and suffix are anchored separately so they never share bytes of the
// query; the segments in between are matched by glob inside what is left.
func Wildcard(segments []string, query string) (bool, error) {
	switch len(segments) {
	case 0:
		return query == "", nil
	case 1:
		return query == segments[0], nil
	}

	prefix, suffix := segments[0], segments[len(segments)-1]
	if len(query) < len(prefix)+len(suffix) ||
		!strings.HasPrefix(query, prefix) || !strings.HasSuffix(query, suffix) {
		return false, nil
	}

	var inner []string
	for _, s := range segments[1 : len(segments)-1] {
		if s != "" {
			inner = append(inner, s)
		}
	}
	if len(inner) == 0 {
		return true, nil
	}
	middle := query[len(prefix) : len(query)-len(suffix)]
	return compileMatch(anything+Join(inner)+anything, middle)
}

func compileMatch(pattern, s string) (bool, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return g.Match(s), nil
}
