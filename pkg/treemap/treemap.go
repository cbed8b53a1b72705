// Package treemap renders weighted value trees as slice-and-dice treemaps.
//
// A treemap subdivides a rectangle so that each node's area is proportional
// to its reduced value relative to its siblings. Subdivision alternates the
// cut axis at every depth level: a horizontally sliced cell is sliced
// vertically one level down, and vice versa. Siblings are laid out strictly
// in input order; they are never reordered by value.
//
// Rendering is a one-shot pure computation: a call either returns a complete
// document or an error, never a partial document. A Renderer's style
// functions may be replaced between renders but must not be mutated while a
// render is in flight on the same instance.
package treemap

import (
	"fmt"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/svg"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// Axis identifies the direction a cell is sliced along.
type Axis int

const (
	// Horizontal slices a rectangle into columns (children advance along x).
	Horizontal Axis = iota
	// Vertical slices a rectangle into rows (children advance along y).
	Vertical
)

// String returns "horizontal" or "vertical".
func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// MarshalJSON encodes the axis as its string name.
func (a Axis) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a Axis) flip() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Cell is the rectangle computed for one node during layout. Cells are
// ephemeral: the renderer materializes one per node, consults the style
// functions, and moves on.
type Cell struct {
	Label   string  `json:"label,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Share   float64 `json:"share"`
	Padding float64 `json:"padding"`
	Depth   int     `json:"depth"`
	Leaf    bool    `json:"leaf"`
	Axis    Axis    `json:"axis"`
}

// Renderer converts value trees into SVG documents. The zero value is not
// usable; construct with New, which installs the default style functions.
type Renderer struct {
	cellColor ColorFunc
	border    BorderFunc
	padding   PaddingFunc
	text      TextFunc
}

// New creates a renderer with the default styles: light gray fill, thin
// gray stroke, padding 2, and a plain readable text style.
func New() *Renderer {
	r := &Renderer{}
	r.Reset()
	return r
}

// Render lays out the tree inside a width x height canvas and returns the
// resulting document. The root rectangle is sliced horizontally; axis
// alternates at each deeper level.
//
// Zero-total subtrees are skipped: the enclosing cell is still emitted but
// no children are laid out inside it, since shares would be undefined.
func (r *Renderer) Render(t tree.Tree, width, height float64) (*svg.Document, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := tree.Validate(t); err != nil {
		return nil, err
	}

	doc := svg.NewDocument(width, height)
	group := svg.NewElement("g")
	doc.Root().Append(group)

	r.walk(asBranch(t), 0, 0, width, height, Horizontal, 0, func(c Cell, node tree.Tree) {
		group.Append(r.emitRect(c, node))
		if c.Leaf {
			group.Append(r.emitLabel(c, node))
		}
	})
	return doc, nil
}

// Layout computes the cell geometry for every node without building a
// document. Cells appear in emission order: parents before children,
// siblings in input order. Padding influences geometry the same way it
// does during Render.
func (r *Renderer) Layout(t tree.Tree, width, height float64) ([]Cell, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := tree.Validate(t); err != nil {
		return nil, err
	}

	var cells []Cell
	r.walk(asBranch(t), 0, 0, width, height, Horizontal, 0, func(c Cell, _ tree.Tree) {
		cells = append(cells, c)
	})
	return cells, nil
}

// walk recursively subdivides the rectangle (x, y, w, h) among the branch's
// children along the given axis and invokes visit for each cell. Reduced
// values are recomputed on every call.
func (r *Renderer) walk(b *tree.Branch, x, y, w, h float64, axis Axis, depth int, visit func(Cell, tree.Tree)) {
	total := b.Total()
	if total == 0 {
		// All descendants weigh zero; shares would be 0/0.
		return
	}

	offset := 0.0
	for _, child := range b.Children {
		share := child.Total() / total
		pad := r.padding(share, child)

		cell := Cell{
			Share:   share,
			Padding: pad,
			Depth:   depth,
			Axis:    axis,
		}
		if axis == Horizontal {
			cell.X, cell.Y = x+offset*w, y
			cell.Width, cell.Height = share*w, h
		} else {
			cell.X, cell.Y = x, y+offset*h
			cell.Width, cell.Height = w, share*h
		}

		switch c := child.(type) {
		case *tree.Leaf:
			cell.Leaf = true
			cell.Label = c.Label
			visit(cell, child)
		case *tree.Branch:
			visit(cell, child)
			// Padding is not clamped; oversized padding inverts the content
			// rectangle and is passed through unchanged.
			r.walk(c,
				cell.X+pad, cell.Y+pad,
				cell.Width-2*pad, cell.Height-2*pad,
				axis.flip(), depth+1, visit)
		}

		offset += share
	}
}

func (r *Renderer) emitRect(c Cell, node tree.Tree) *svg.Element {
	rect := svg.NewElement("rect")
	rect.SetAttr("x", svg.FormatNumber(c.X))
	rect.SetAttr("y", svg.FormatNumber(c.Y))
	rect.SetAttr("width", svg.FormatNumber(c.Width))
	rect.SetAttr("height", svg.FormatNumber(c.Height))
	rect.SetAttr("style", fmt.Sprintf("fill:%s;%s", r.cellColor(c.Share, node), r.border(c.Share, node)))
	return rect
}

func (r *Renderer) emitLabel(c Cell, node tree.Tree) *svg.Element {
	label := svg.NewElement("text")
	label.SetAttr("x", svg.FormatNumber(c.X+c.Padding))
	label.SetAttr("y", svg.FormatNumber(c.Y+c.Padding))
	if c.Axis == Vertical {
		// Labels read along the long axis of a row cell.
		label.SetAttr("transform",
			fmt.Sprintf("rotate(90 %s %s)", svg.FormatNumber(c.X), svg.FormatNumber(c.Y)))
	}
	label.SetAttr("style", r.text(c.Share, node, c.Label))
	label.Append(svg.NewText(c.Label))
	return label
}

// asBranch normalizes the root: a bare leaf renders as a branch with a
// single child covering the whole canvas.
func asBranch(t tree.Tree) *tree.Branch {
	if b, ok := t.(*tree.Branch); ok {
		return b
	}
	return tree.NewBranch(t)
}

func checkDimensions(width, height float64) error {
	if width <= 0 || height <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidDimensions,
			"canvas dimensions must be positive, got %vx%v", width, height)
	}
	return nil
}
