// Package lang holds the grammars litgrep can search with.
package lang

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Default is the grammar used when none is configured.
const Default = "javascript"

// ErrUnknownLanguage is returned by Lookup for unsupported names.
var ErrUnknownLanguage = errors.New("unknown language")

// Language is one configured grammar and the file extensions it parses.
type Language struct {
	Name       string
	Extensions []string
	Grammar    *sitter.Language
}

var registry = map[string]func() *Language{
	"javascript": func() *Language {
		return &Language{
			Name:       "javascript",
			Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
			Grammar:    javascript.GetLanguage(),
		}
	},
	"typescript": func() *Language {
		return &Language{
			Name:       "typescript",
			Extensions: []string{".ts", ".mts", ".cts"},
			Grammar:    typescript.GetLanguage(),
		}
	},
	"tsx": func() *Language {
		return &Language{
			Name:       "tsx",
			Extensions: []string{".tsx"},
			Grammar:    tsx.GetLanguage(),
		}
	},
}

var aliases = map[string]string{
	"js": "javascript",
	"ts": "typescript",
}

// Names lists the supported language names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the grammar registered under name (case-insensitive).
func Lookup(name string) (*Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Default
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	build, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownLanguage, name, strings.Join(Names(), ", "))
	}
	return build(), nil
}

// WithExtensions replaces the language's extension list. Entries are
// normalised to start with a dot. An empty list keeps the defaults.
func (l *Language) WithExtensions(exts []string) *Language {
	var cleaned []string
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		cleaned = append(cleaned, e)
	}
	if len(cleaned) == 0 {
		return l
	}
	out := *l
	out.Extensions = cleaned
	return &out
}

// Matches reports whether name ends with one of the language's extensions.
func (l *Language) Matches(name string) bool {
	base := path.Base(name)
	for _, ext := range l.Extensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return true
		}
	}
	return false
}

// NewParser returns a parser configured for l. Parsers are not safe for
// concurrent use; a search owns one and reuses it across files.
func NewParser(l *Language) *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.Grammar)
	return p
}
