// Package pkg provides the core libraries for mosaic treemap rendering.
//
// # Overview
//
// Mosaic turns hierarchies of weighted values into slice-and-dice treemap
// images. The typical data flow:
//
//	JSON/TOML tree file (or a directory scan)
//	         ↓
//	    [tree] package (value tree structure)
//	         ↓
//	    [treemap] package (layout + styling)
//	         ↓
//	    [svg] package (document assembly)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
// Load a tree and render it:
//
//	import (
//	    "github.com/mosaiclabs/mosaic/pkg/treeio"
//	    "github.com/mosaiclabs/mosaic/pkg/treemap"
//	)
//
//	t, _ := treeio.Import("values.json")
//	r := treemap.New()
//	_ = r.ApplyStyle("tinted")
//	doc, _ := r.Render(t, 800, 600)
//	_ = os.WriteFile("values.svg", doc.Bytes(), 0o644)
//
// # Main Packages
//
// [tree] - The weighted value tree: leaves carry a label and weight,
// branches group children in a significant order.
//
// [treemap] - The slice-and-dice layout and the replaceable style
// functions (cell color, border, padding, text properties).
//
// [svg] - Minimal SVG document construction with deterministic
// attribute ordering.
//
// [treeio] - JSON and TOML codecs for value trees.
//
// [structure] - Node-link diagrams of a tree's shape via Graphviz.
//
// [scan] - Builds a value tree from directory sizes on disk.
//
// [raster] - SVG to PNG/PDF conversion via rsvg-convert.
//
// [cache] - Content-addressed render cache with file, Redis, and null
// backends.
//
// [config], [errors], [buildinfo], [observability] - Supporting
// infrastructure shared by the CLI and the HTTP service.
//
// [tree]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/tree
// [treemap]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/treemap
// [svg]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/svg
// [treeio]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/treeio
// [structure]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/structure
// [scan]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/scan
// [raster]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/raster
// [cache]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/cache
// [config]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/config
// [errors]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/buildinfo
// [observability]: https://pkg.go.dev/github.com/mosaiclabs/mosaic/pkg/observability
package pkg
