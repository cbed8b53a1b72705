package treemap

import (
	"math"
	"strconv"
	"strings"
	"testing"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/svg"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// elements returns the document's rect and text elements in emission order.
func elements(t *testing.T, doc *svg.Document, tag string) []*svg.Element {
	t.Helper()
	kids := doc.Root().Children()
	if len(kids) != 1 || kids[0].Tag != "g" {
		t.Fatalf("document root should hold exactly one group, got %d children", len(kids))
	}
	var out []*svg.Element
	for _, e := range kids[0].Children() {
		if e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

func attrFloat(t *testing.T, e *svg.Element, key string) float64 {
	t.Helper()
	v, ok := e.Attr(key)
	if !ok {
		t.Fatalf("element missing attribute %q", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		t.Fatalf("attribute %q=%q is not numeric: %v", key, v, err)
	}
	return f
}

func TestRenderSingleLeaf(t *testing.T) {
	r := New()
	doc, err := r.Render(tree.NewBranch(tree.NewLeaf("Foo", 34)), 500, 300)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rects := elements(t, doc, "rect")
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
	for _, tt := range []struct {
		key  string
		want float64
	}{{"x", 0}, {"y", 0}, {"width", 500}, {"height", 300}} {
		if got := attrFloat(t, rects[0], tt.key); !almostEqual(got, tt.want) {
			t.Errorf("rect %s = %v, want %v", tt.key, got, tt.want)
		}
	}

	texts := elements(t, doc, "text")
	if len(texts) != 1 {
		t.Fatalf("got %d labels, want 1", len(texts))
	}
	if !strings.Contains(doc.String(), ">Foo</text>") {
		t.Error("label content should be Foo")
	}
}

func TestRenderEqualShares(t *testing.T) {
	r := New()
	doc, err := r.Render(tree.NewBranch(tree.NewLeaf("Foo", 1), tree.NewLeaf("Bar", 1)), 100, 50)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rects := elements(t, doc, "rect")
	if len(rects) != 2 {
		t.Fatalf("got %d rects, want 2", len(rects))
	}

	want := []struct{ x, y, w, h float64 }{
		{0, 0, 50, 50},
		{50, 0, 50, 50},
	}
	for i, w := range want {
		if got := attrFloat(t, rects[i], "x"); !almostEqual(got, w.x) {
			t.Errorf("rect %d x = %v, want %v", i, got, w.x)
		}
		if got := attrFloat(t, rects[i], "width"); !almostEqual(got, w.w) {
			t.Errorf("rect %d width = %v, want %v", i, got, w.w)
		}
		if got := attrFloat(t, rects[i], "height"); !almostEqual(got, w.h) {
			t.Errorf("rect %d height = %v, want %v", i, got, w.h)
		}
	}
}

func TestRenderNestedSubdivision(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(0))

	tr := tree.NewBranch(
		tree.NewLeaf("A", 3),
		tree.NewBranch(tree.NewLeaf("B", 1), tree.NewLeaf("C", 1)),
	)
	cells, err := r.Layout(tr, 200, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	// Emission order: A, branch, B, C.
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}

	// The branch reduces to 1+1=2, so the root total is 5 and A holds 3/5.
	a := cells[0]
	if !almostEqual(a.Share, 0.6) {
		t.Errorf("A share = %v, want 0.6", a.Share)
	}
	if a.X != 0 || !almostEqual(a.Width, 120) || !almostEqual(a.Height, 100) {
		t.Errorf("A cell = (%v,%v,%v,%v), want (0,0,120,100)", a.X, a.Y, a.Width, a.Height)
	}

	branch := cells[1]
	if branch.Leaf {
		t.Error("second cell should be a branch cell")
	}
	if !almostEqual(branch.X, 120) || !almostEqual(branch.Width, 80) {
		t.Errorf("branch cell x/width = %v/%v, want 120/80", branch.X, branch.Width)
	}

	b, c := cells[2], cells[3]
	if b.Label != "B" || c.Label != "C" {
		t.Fatalf("inner order = %q, %q; want B, C", b.Label, c.Label)
	}
	for _, cell := range []Cell{b, c} {
		if cell.Axis != Vertical {
			t.Errorf("cell %q axis = %v, want vertical", cell.Label, cell.Axis)
		}
		if !almostEqual(cell.Height, 50) {
			t.Errorf("cell %q height = %v, want 50", cell.Label, cell.Height)
		}
	}
	if !almostEqual(c.Y-b.Y, 50) {
		t.Errorf("C should be stacked 50 below B, got dy=%v", c.Y-b.Y)
	}
}

func TestAreaConservation(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(0))

	tr := tree.NewBranch(
		tree.NewLeaf("A", 5),
		tree.NewBranch(
			tree.NewLeaf("B", 2),
			tree.NewLeaf("C", 1),
			tree.NewBranch(tree.NewLeaf("D", 4), tree.NewLeaf("E", 3)),
		),
		tree.NewLeaf("F", 7),
	)

	cells, err := r.Layout(tr, 640, 480)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	// With zero padding each branch cell tiles exactly into its immediate
	// children. Cells arrive parents before children, so the open branch at
	// every depth can be tracked with a stack; the canvas is the root frame.
	type frame struct {
		idx       int
		area, sum float64
	}
	stack := []frame{{idx: -1, area: 640 * 480}}
	check := func(f frame) {
		if diff := math.Abs(f.area - f.sum); diff > 1e-6 {
			t.Errorf("branch cell %d area = %v, children sum = %v (diff %v)", f.idx, f.area, f.sum, diff)
		}
	}
	for i, c := range cells {
		for len(stack) > c.Depth+1 {
			check(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}
		stack[len(stack)-1].sum += c.Width * c.Height
		if !c.Leaf {
			stack = append(stack, frame{idx: i, area: c.Width * c.Height})
		}
	}
	for len(stack) > 0 {
		check(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
}

func TestOversizedPaddingPassesThrough(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(60))

	tr := tree.NewBranch(tree.NewBranch(tree.NewLeaf("inner", 1)))
	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}

	// Padding larger than half the cell inverts the content rectangle.
	// The inverted geometry is passed through unclamped.
	inner := cells[1]
	if inner.Depth != 1 || !inner.Leaf {
		t.Fatalf("second cell should be the depth-1 leaf, got depth %d leaf=%v", inner.Depth, inner.Leaf)
	}
	for _, tt := range []struct {
		name string
		got  float64
		want float64
	}{
		{"x", inner.X, 60},
		{"y", inner.Y, 60},
		{"width", inner.Width, -20},
		{"height", inner.Height, -20},
	} {
		if !almostEqual(tt.got, tt.want) {
			t.Errorf("inner %s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestShareCorrectness(t *testing.T) {
	r := New()
	tr := tree.NewBranch(tree.NewLeaf("A", 3), tree.NewLeaf("B", 5), tree.NewLeaf("C", 2))
	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := []float64{0.3, 0.5, 0.2}
	for i, c := range cells {
		if !almostEqual(c.Share, want[i]) {
			t.Errorf("cell %d share = %v, want %v", i, c.Share, want[i])
		}
	}
}

func TestAxisAlternation(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(0))

	// Four levels deep.
	tr := tree.NewBranch(
		tree.NewBranch(
			tree.NewBranch(
				tree.NewBranch(tree.NewLeaf("deep", 1)),
			),
		),
	)
	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	want := []Axis{Horizontal, Vertical, Horizontal, Vertical}
	if len(cells) != len(want) {
		t.Fatalf("got %d cells, want %d", len(cells), len(want))
	}
	for i, c := range cells {
		if c.Axis != want[i] {
			t.Errorf("depth %d axis = %v, want %v", c.Depth, c.Axis, want[i])
		}
	}
}

func TestOrderPreservation(t *testing.T) {
	r := New()
	// Deliberately not sorted by weight.
	tr := tree.NewBranch(
		tree.NewLeaf("small", 1),
		tree.NewLeaf("big", 100),
		tree.NewLeaf("mid", 10),
	)
	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	labels := []string{"small", "big", "mid"}
	for i, c := range cells {
		if c.Label != labels[i] {
			t.Errorf("cell %d label = %q, want %q", i, c.Label, labels[i])
		}
		if i > 0 && cells[i].X <= cells[i-1].X {
			t.Errorf("cell %d x = %v, should be right of previous (%v)", i, cells[i].X, cells[i-1].X)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	r := New()
	tr := tree.NewBranch(
		tree.NewLeaf("A", 3),
		tree.NewBranch(tree.NewLeaf("B", 1), tree.NewLeaf("C", 1)),
	)

	first, err := r.Render(tr, 200, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := r.Render(tr, 200, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if first.String() != second.String() {
		t.Error("two renders of the same tree produced different documents")
	}
}

func TestZeroValueLeaf(t *testing.T) {
	r := New()
	tr := tree.NewBranch(tree.NewLeaf("A", 1), tree.NewLeaf("empty", 0), tree.NewLeaf("B", 1))

	doc, err := r.Render(tr, 100, 50)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rects := elements(t, doc, "rect")
	if len(rects) != 3 {
		t.Fatalf("got %d rects, want 3 (zero-value cell still emitted)", len(rects))
	}
	if got := attrFloat(t, rects[1], "width"); got != 0 {
		t.Errorf("zero-value cell width = %v, want 0", got)
	}
}

func TestZeroTotalSubtreeSkipped(t *testing.T) {
	r := New()
	tr := tree.NewBranch(
		tree.NewLeaf("A", 1),
		tree.NewBranch(tree.NewLeaf("x", 0), tree.NewLeaf("y", 0)),
	)

	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	// A, then the zero-total branch cell; no cells inside it.
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if cells[1].Leaf {
		t.Error("second cell should be the empty branch")
	}
	if cells[1].Width != 0 {
		t.Errorf("zero-total branch width = %v, want 0", cells[1].Width)
	}
}

func TestZeroTotalRoot(t *testing.T) {
	r := New()
	doc, err := r.Render(tree.NewBranch(tree.NewLeaf("a", 0)), 100, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rects := elements(t, doc, "rect"); len(rects) != 0 {
		t.Errorf("zero-total root emitted %d rects, want 0", len(rects))
	}
}

func TestCustomCellColor(t *testing.T) {
	r := New()
	var calls int
	r.SetCellColor(func(share float64, node tree.Tree) string {
		calls++
		if share > 0.5 {
			return "#ff0000"
		}
		return "#0000ff"
	})

	doc, err := r.Render(tree.NewBranch(tree.NewLeaf("A", 3), tree.NewLeaf("B", 1)), 100, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rects := elements(t, doc, "rect")
	styleA, _ := rects[0].Attr("style")
	styleB, _ := rects[1].Attr("style")
	if !strings.Contains(styleA, "fill:#ff0000") {
		t.Errorf("A style = %q, want red fill for share 0.75", styleA)
	}
	if !strings.Contains(styleB, "fill:#0000ff") {
		t.Errorf("B style = %q, want blue fill for share 0.25", styleB)
	}
	if calls != 2 {
		t.Errorf("cellColor called %d times, want 2", calls)
	}
}

func TestVerticalLabelsRotated(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(0))
	tr := tree.NewBranch(
		tree.NewBranch(tree.NewLeaf("inner", 1)),
	)

	doc, err := r.Render(tr, 100, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	texts := elements(t, doc, "text")
	if len(texts) != 1 {
		t.Fatalf("got %d labels, want 1", len(texts))
	}
	transform, ok := texts[0].Attr("transform")
	if !ok || !strings.HasPrefix(transform, "rotate(90 ") {
		t.Errorf("vertical-axis label transform = %q, want rotate(90 ...)", transform)
	}
}

func TestHorizontalLabelsNotRotated(t *testing.T) {
	r := New()
	doc, err := r.Render(tree.NewBranch(tree.NewLeaf("A", 1)), 50, 50)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	texts := elements(t, doc, "text")
	if _, ok := texts[0].Attr("transform"); ok {
		t.Error("horizontal-axis label should not carry a transform")
	}
}

func TestPaddingInsetsChildren(t *testing.T) {
	r := New()
	r.SetPadding(ConstantPadding(5))

	tr := tree.NewBranch(tree.NewBranch(tree.NewLeaf("A", 1)))
	cells, err := r.Layout(tr, 100, 100)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	inner := cells[1]
	if inner.X != 5 || inner.Y != 5 {
		t.Errorf("inner origin = (%v,%v), want (5,5)", inner.X, inner.Y)
	}
	if inner.Width != 90 || inner.Height != 90 {
		t.Errorf("inner size = %vx%v, want 90x90", inner.Width, inner.Height)
	}
}

func TestRenderErrors(t *testing.T) {
	r := New()
	valid := tree.NewBranch(tree.NewLeaf("A", 1))

	tests := []struct {
		name   string
		tree   tree.Tree
		w, h   float64
		code   apperrors.Code
	}{
		{"nil tree", nil, 100, 100, apperrors.ErrCodeInvalidTree},
		{"negative weight", tree.NewBranch(tree.NewLeaf("A", -1)), 100, 100, apperrors.ErrCodeInvalidTree},
		{"zero width", valid, 0, 100, apperrors.ErrCodeInvalidDimensions},
		{"negative height", valid, 100, -5, apperrors.ErrCodeInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := r.Render(tt.tree, tt.w, tt.h)
			if err == nil {
				t.Fatal("expected error")
			}
			if doc != nil {
				t.Error("failed render must not return a document")
			}
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error code = %q, want %q", apperrors.GetCode(err), tt.code)
			}
		})
	}
}

func TestBareLeafRoot(t *testing.T) {
	r := New()
	doc, err := r.Render(tree.NewLeaf("only", 7), 100, 100)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rects := elements(t, doc, "rect")
	if len(rects) != 1 {
		t.Fatalf("got %d rects, want 1", len(rects))
	}
	if got := attrFloat(t, rects[0], "width"); !almostEqual(got, 100) {
		t.Errorf("width = %v, want 100", got)
	}
}
