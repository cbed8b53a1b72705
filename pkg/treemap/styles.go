package treemap

import (
	"fmt"
	"hash/fnv"
	"strconv"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// Style function signatures. Each receives the cell's share (its reduced
// value divided by the parent's total, in (0, 1]) and the raw subtree the
// cell represents. Text functions additionally receive the leaf's label.
type (
	// ColorFunc returns a fill color for a cell.
	ColorFunc func(share float64, node tree.Tree) string
	// BorderFunc returns a stroke style declaration for a cell.
	BorderFunc func(share float64, node tree.Tree) string
	// PaddingFunc returns the inset applied between a cell and its content.
	// The renderer uses the value as-is; non-finite or oversized values
	// propagate into geometry rather than being silently corrected.
	PaddingFunc func(share float64, node tree.Tree) float64
	// TextFunc returns the style declaration for a leaf's label.
	TextFunc func(share float64, node tree.Tree, label string) string
)

// Property names the four replaceable style slots.
type Property string

const (
	PropCellColor      Property = "cellColor"
	PropBorder         Property = "border"
	PropPadding        Property = "padding"
	PropTextProperties Property = "textProperties"
)

// Default style values.
const (
	DefaultFill      = "#eeeeef"
	DefaultBorder    = "stroke:#cccccc;stroke-width:1"
	DefaultPadding   = 2.0
	DefaultTextStyle = "font-family:sans-serif;font-size:12px;fill:#333333"
)

func defaultCellColor(float64, tree.Tree) string    { return DefaultFill }
func defaultBorder(float64, tree.Tree) string       { return DefaultBorder }
func defaultPadding(float64, tree.Tree) float64     { return DefaultPadding }
func defaultText(float64, tree.Tree, string) string { return DefaultTextStyle }

// Reset restores all four style functions to their defaults.
func (r *Renderer) Reset() {
	r.cellColor = defaultCellColor
	r.border = defaultBorder
	r.padding = defaultPadding
	r.text = defaultText
}

// SetCellColor replaces the fill color function. A nil fn restores the
// default. The same applies to the other three setters.
func (r *Renderer) SetCellColor(fn ColorFunc) {
	if fn == nil {
		fn = defaultCellColor
	}
	r.cellColor = fn
}

// SetBorder replaces the stroke style function.
func (r *Renderer) SetBorder(fn BorderFunc) {
	if fn == nil {
		fn = defaultBorder
	}
	r.border = fn
}

// SetPadding replaces the padding function.
func (r *Renderer) SetPadding(fn PaddingFunc) {
	if fn == nil {
		fn = defaultPadding
	}
	r.padding = fn
}

// SetTextProperties replaces the label style function.
func (r *Renderer) SetTextProperties(fn TextFunc) {
	if fn == nil {
		fn = defaultText
	}
	r.text = fn
}

// Set replaces a style function by property name. It fails with an
// INVALID_PROPERTY error when the name is not one of the four recognized
// properties, or when fn does not have the signature the property expects.
// Renderer state is unchanged on error.
func (r *Renderer) Set(prop Property, fn any) error {
	switch prop {
	case PropCellColor:
		switch f := fn.(type) {
		case ColorFunc:
			r.SetCellColor(f)
		case func(float64, tree.Tree) string:
			r.SetCellColor(f)
		default:
			return badStyleFunc(prop, fn)
		}
	case PropBorder:
		switch f := fn.(type) {
		case BorderFunc:
			r.SetBorder(f)
		case func(float64, tree.Tree) string:
			r.SetBorder(f)
		default:
			return badStyleFunc(prop, fn)
		}
	case PropPadding:
		switch f := fn.(type) {
		case PaddingFunc:
			r.SetPadding(f)
		case func(float64, tree.Tree) float64:
			r.SetPadding(f)
		default:
			return badStyleFunc(prop, fn)
		}
	case PropTextProperties:
		switch f := fn.(type) {
		case TextFunc:
			r.SetTextProperties(f)
		case func(float64, tree.Tree, string) string:
			r.SetTextProperties(f)
		default:
			return badStyleFunc(prop, fn)
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidProperty, "unknown style property %q", prop)
	}
	return nil
}

func badStyleFunc(prop Property, fn any) error {
	return apperrors.New(apperrors.ErrCodeInvalidProperty,
		"wrong function type %T for style property %q", fn, prop)
}

// StyleNames lists the built-in named styles accepted by ApplyStyle.
var StyleNames = []string{"plain", "tinted"}

// ApplyStyle installs a built-in named style. "plain" is the default look;
// "tinted" colors leaves from a fixed palette keyed by label and scales
// label text with share.
func (r *Renderer) ApplyStyle(name string) error {
	switch name {
	case "plain":
		r.Reset()
	case "tinted":
		r.Reset()
		r.SetCellColor(Palette(DefaultPalette...))
		r.SetTextProperties(ScaledText(9, 18))
	default:
		return apperrors.New(apperrors.ErrCodeInvalidStyle,
			"unknown style %q (must be 'plain' or 'tinted')", name)
	}
	return nil
}

// DefaultPalette is the leaf color palette used by the "tinted" style.
var DefaultPalette = []string{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3",
	"#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd",
}

// Palette returns a ColorFunc that picks a color by hashing the leaf's
// label, so a given label colors consistently across renders. Branches
// keep the default fill.
func Palette(colors ...string) ColorFunc {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	return func(_ float64, node tree.Tree) string {
		leaf, ok := node.(*tree.Leaf)
		if !ok {
			return DefaultFill
		}
		h := fnv.New32a()
		h.Write([]byte(leaf.Label))
		return colors[h.Sum32()%uint32(len(colors))]
	}
}

// Gradient returns a ColorFunc interpolating between two hex colors by the
// cell's share: small shares lean toward from, a share of 1 gives to.
func Gradient(from, to string) ColorFunc {
	fr, fg, fb, okF := parseHexColor(from)
	tr, tg, tb, okT := parseHexColor(to)
	return func(share float64, _ tree.Tree) string {
		if !okF || !okT {
			return from
		}
		if share < 0 {
			share = 0
		} else if share > 1 {
			share = 1
		}
		lerp := func(a, b int) int { return a + int(share*float64(b-a)) }
		return fmt.Sprintf("#%02x%02x%02x", lerp(fr, tr), lerp(fg, tg), lerp(fb, tb))
	}
}

// ScaledText returns a TextFunc whose font size grows with share between
// the given bounds.
func ScaledText(minSize, maxSize float64) TextFunc {
	return func(share float64, _ tree.Tree, _ string) string {
		if share < 0 {
			share = 0
		} else if share > 1 {
			share = 1
		}
		size := minSize + share*(maxSize-minSize)
		return fmt.Sprintf("font-family:sans-serif;font-size:%.1fpx;fill:#333333", size)
	}
}

// ConstantPadding returns a PaddingFunc that always yields pad.
func ConstantPadding(pad float64) PaddingFunc {
	return func(float64, tree.Tree) float64 { return pad }
}

func parseHexColor(s string) (r, g, b int, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
