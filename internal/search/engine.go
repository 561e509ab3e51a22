// Package search runs a query over every source file under a root directory
// and streams the matching literals as hits.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/agentic-research/litgrep/api"
	"github.com/agentic-research/litgrep/internal/lang"
	"github.com/agentic-research/litgrep/internal/match"
	"github.com/agentic-research/litgrep/internal/source"
	"github.com/agentic-research/litgrep/internal/traverse"
	"github.com/charmbracelet/log"
	billy "github.com/go-git/go-billy/v5"
	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrRead marks a file that could not be read.
	ErrRead = errors.New("read failed")
	// ErrParse marks a file that could not be parsed.
	ErrParse = errors.New("parse failed")
)

// FileError is a failure confined to one file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Stats summarises a finished search.
type Stats struct {
	// Files is the number of files that passed the extension filter.
	Files int
	// Matched is the number of files with at least one hit.
	Matched int
	// Skipped is the number of files and directories dropped after an error.
	Skipped int
	Hits    int
}

// Engine drives the matcher over a directory tree.
type Engine struct {
	FS       billy.Filesystem
	Language *lang.Language
	Logger   *log.Logger
	SkipDirs []string
	// Strict treats a tree containing syntax errors as a parse failure.
	Strict bool
	// FailFast ends the search at the first per-file failure instead of
	// logging it and moving on.
	FailFast bool

	parser *sitter.Parser
	stats  Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for skipped files and per-file timing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.Logger = l }
}

// WithSkipDirs replaces the directory names that are not descended into.
func WithSkipDirs(dirs []string) Option {
	return func(e *Engine) { e.SkipDirs = dirs }
}

// WithStrict toggles strict parsing.
func WithStrict(strict bool) Option {
	return func(e *Engine) { e.Strict = strict }
}

// WithFailFast toggles aborting on the first per-file failure.
func WithFailFast(failFast bool) Option {
	return func(e *Engine) { e.FailFast = failFast }
}

// NewEngine returns an Engine searching fsys with language. The parser is
// created once here and reused for every file.
func NewEngine(fsys billy.Filesystem, language *lang.Language, opts ...Option) *Engine {
	e := &Engine{
		FS:       fsys,
		Language: language,
		Logger:   log.New(io.Discard),
		SkipDirs: source.DefaultSkipDirs,
		Strict:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.parser = lang.NewParser(language)
	return e
}

// Stats returns the counters of the last search.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Search yields every hit for query, files in walk order and hits within a
// file in tree order. Files are processed one at a time.
//
// A failing file is logged and skipped unless FailFast is set, in which case
// its error is yielded and the sequence ends. Cancelling ctx ends the
// sequence with ctx.Err().
func (e *Engine) Search(ctx context.Context, query string) iter.Seq2[api.Hit, error] {
	return func(yield func(api.Hit, error) bool) {
		e.stats = Stats{}
		m := match.New(query)

		for name, err := range source.Files(e.FS, source.WalkOptions{SkipDirs: e.SkipDirs}) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(api.Hit{}, ctxErr)
				return
			}
			if err != nil {
				if !e.failure(err, yield) {
					return
				}
				continue
			}
			if !e.Language.Matches(name) {
				continue
			}
			e.stats.Files++

			hits, err := e.searchFile(ctx, m, name)
			if err != nil {
				if !e.failure(err, yield) {
					return
				}
				continue
			}
			if len(hits) > 0 {
				e.stats.Matched++
			}
			for _, h := range hits {
				e.stats.Hits++
				if !yield(h, nil) {
					return
				}
			}
		}
	}
}

// failure applies the per-file error policy and reports whether the search
// should continue.
func (e *Engine) failure(err error, yield func(api.Hit, error) bool) bool {
	e.stats.Skipped++
	if e.FailFast {
		yield(api.Hit{}, err)
		return false
	}
	e.Logger.Warn("skipping", "err", err)
	return true
}

func (e *Engine) searchFile(ctx context.Context, m *match.Matcher, name string) ([]api.Hit, error) {
	start := time.Now()

	src, err := source.Read(e.FS, name)
	if err != nil {
		return nil, &FileError{Path: name, Err: fmt.Errorf("%w: %w", ErrRead, err)}
	}
	hits, err := e.match(ctx, m, name, src)
	if err != nil {
		return nil, err
	}

	e.Logger.Debug("searched", "file", name, "bytes", len(src), "hits", len(hits), "took", time.Since(start))
	return hits, nil
}

// File searches a single in-memory source. name is only used to tag hits.
func (e *Engine) File(ctx context.Context, name string, src []byte, query string) ([]api.Hit, error) {
	return e.match(ctx, match.New(query), name, src)
}

func (e *Engine) match(ctx context.Context, m *match.Matcher, name string, src []byte) ([]api.Hit, error) {
	tree, err := e.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &FileError{Path: name, Err: fmt.Errorf("%w: %w", ErrParse, err)}
	}
	if tree == nil {
		return nil, &FileError{Path: name, Err: ErrParse}
	}
	defer tree.Close()

	root := tree.RootNode()
	if e.Strict && root.HasError() {
		return nil, &FileError{Path: name, Err: syntaxError(root)}
	}

	nodes, err := m.File(root, src)
	if err != nil {
		return nil, &FileError{Path: name, Err: err}
	}

	hits := make([]api.Hit, 0, len(nodes))
	for _, n := range nodes {
		hits = append(hits, newHit(name, n, src))
	}
	return hits, nil
}

// SyntaxError is the position of the first ERROR or MISSING node in a tree.
type SyntaxError struct {
	Line   uint32 // 0-indexed
	Column uint32 // 0-indexed
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d", e.Line+1, e.Column+1)
}

func (e *SyntaxError) Unwrap() error { return ErrParse }

func syntaxError(root *sitter.Node) error {
	var bad *sitter.Node
	traverse.Walk(root, func(n *sitter.Node) traverse.Directive {
		if bad != nil || !n.HasError() {
			return traverse.Skip
		}
		if n.IsError() || n.IsMissing() {
			bad = n
			return traverse.Skip
		}
		return traverse.Descend
	})
	if bad == nil {
		return &SyntaxError{}
	}
	p := bad.StartPoint()
	return &SyntaxError{Line: p.Row, Column: p.Column}
}

func newHit(name string, n *sitter.Node, src []byte) api.Hit {
	kind, _ := match.Kind(n)
	start, end := n.StartPoint(), n.EndPoint()
	return api.Hit{
		File:      name,
		Kind:      kind,
		Text:      n.Content(src),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Start:     api.Position{Row: start.Row, Column: start.Column},
		End:       api.Position{Row: end.Row, Column: end.Column},
	}
}
