// Package scan builds value trees from the filesystem: every directory
// becomes a branch, every file a leaf weighted by its size in bytes. The
// result feeds directly into the treemap renderer, giving a disk usage
// treemap.
package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// Options controls the scan.
type Options struct {
	// Workers is the walk parallelism. Zero picks fastwalk's default.
	Workers int

	// MinSize aggregates files smaller than this many bytes into a single
	// "(other)" leaf per directory, so totals stay exact while small files
	// stop dominating the cell count.
	MinSize int64

	// MaxDepth collapses directories nested deeper than this many levels
	// into a single leaf carrying their total size. Zero means unlimited.
	MaxDepth int

	// Follow resolves symlinked directories during the walk.
	Follow bool
}

// dirEntry accumulates one directory's contents during the walk.
type dirEntry struct {
	files map[string]int64
	dirs  map[string]*dirEntry
}

func newDirEntry() *dirEntry {
	return &dirEntry{files: make(map[string]int64), dirs: make(map[string]*dirEntry)}
}

func (d *dirEntry) child(name string) *dirEntry {
	c, ok := d.dirs[name]
	if !ok {
		c = newDirEntry()
		d.dirs[name] = c
	}
	return c
}

func (d *dirEntry) total() int64 {
	var sum int64
	for _, size := range d.files {
		sum += size
	}
	for _, c := range d.dirs {
		sum += c.total()
	}
	return sum
}

// Scan walks root and returns the directory structure as a value tree.
// Children are ordered by name so repeated scans of an unchanged directory
// produce identical trees.
func Scan(ctx context.Context, root string, opts Options) (tree.Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	top := newDirEntry()

	conf := fastwalk.Config{
		Follow:     opts.Follow,
		NumWorkers: opts.Workers,
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, matching du-style tools.
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		dir := top
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for _, part := range parts[:len(parts)-1] {
			dir = dir.child(part)
		}
		dir.files[parts[len(parts)-1]] = info.Size()
		return nil
	}

	if err := fastwalk.Walk(&conf, absRoot, walkFn); err != nil {
		return nil, err
	}

	return buildTree(top, opts, 1), nil
}

// buildTree converts the accumulated directory structure into a value
// tree, applying depth collapsing and small-file aggregation.
func buildTree(d *dirEntry, opts Options, depth int) *tree.Branch {
	names := make([]string, 0, len(d.files)+len(d.dirs))
	for name := range d.files {
		names = append(names, name)
	}
	for name := range d.dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	b := &tree.Branch{}
	var other int64
	for _, name := range names {
		if sub, ok := d.dirs[name]; ok {
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				b.Children = append(b.Children, tree.NewLeaf(name+"/", float64(sub.total())))
			} else {
				b.Children = append(b.Children, buildTree(sub, opts, depth+1))
			}
			continue
		}

		size := d.files[name]
		if opts.MinSize > 0 && size < opts.MinSize {
			other += size
			continue
		}
		b.Children = append(b.Children, tree.NewLeaf(name, float64(size)))
	}

	if other > 0 {
		b.Children = append(b.Children, tree.NewLeaf("(other)", float64(other)))
	}
	return b
}
