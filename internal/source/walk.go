// Package source enumerates and reads the files under a search root.
//
// All access goes through a billy.Filesystem rooted at the search directory,
// so every path handed out is relative to that root and slash-separated.
package source

import (
	"fmt"
	"io"
	"iter"
	"path"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultSkipDirs are directories that are never entered unless disabled.
var DefaultSkipDirs = []string{".git", "node_modules"}

// Open roots a filesystem at dir.
func Open(dir string) billy.Filesystem {
	return osfs.New(dir)
}

// WalkOptions tunes Files.
type WalkOptions struct {
	// SkipDirs are directory base names that are not descended into.
	SkipDirs []string
}

// DirError reports a directory that could not be listed.
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("read dir %s: %v", e.Path, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

// Files lazily yields every regular file under the root of fsys, depth
// first, with directory entries visited in name order. Symlinks are not
// followed. A directory that cannot be listed yields a *DirError and the
// walk moves on to its siblings.
func Files(fsys billy.Filesystem, opts WalkOptions) iter.Seq2[string, error] {
	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	return func(yield func(string, error) bool) {
		walkDir(fsys, ".", skip, yield)
	}
}

// walkDir returns false once the consumer has stopped.
func walkDir(fsys billy.Filesystem, dir string, skip map[string]bool, yield func(string, error) bool) bool {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return yield("", &DirError{Path: dir, Err: err})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := path.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if skip[entry.Name()] {
				continue
			}
			if !walkDir(fsys, name, skip, yield) {
				return false
			}
		case entry.Mode().IsRegular():
			if !yield(name, nil) {
				return false
			}
		}
	}
	return true
}

// Read returns the full contents of name.
func Read(fsys billy.Filesystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}
