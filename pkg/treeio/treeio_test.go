package treeio

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLeaves int
		wantTotal  float64
	}{
		{"single leaf array", `[{"Foo": 34}]`, 1, 34},
		{"flat siblings", `[{"Foo": 1}, {"Bar": 1}]`, 2, 2},
		{"nested", `[{"A": 3}, [{"B": 1}, {"C": 1}]]`, 3, 5},
		{"bare leaf", `{"Solo": 2}`, 1, 2},
		{"zero weight", `[{"empty": 0}]`, 1, 0},
		{"deep nesting", `[[[{"x": 1}]]]`, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if n := tree.CountLeaves(got); n != tt.wantLeaves {
				t.Errorf("leaves = %d, want %d", n, tt.wantLeaves)
			}
			if total := got.Total(); total != tt.wantTotal {
				t.Errorf("total = %v, want %v", total, tt.wantTotal)
			}
		})
	}
}

func TestReadPreservesOrder(t *testing.T) {
	got, err := Read(strings.NewReader(`[{"z": 1}, {"a": 2}, {"m": 3}]`))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	b := got.(*tree.Branch)
	want := []string{"z", "a", "m"}
	for i, c := range b.Children {
		if c.(*tree.Leaf).Label != want[i] {
			t.Errorf("child %d = %q, want %q", i, c.(*tree.Leaf).Label, want[i])
		}
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare number", `42`},
		{"bare string", `"foo"`},
		{"multi-key leaf", `[{"a": 1, "b": 2}]`},
		{"non-numeric value", `[{"a": "big"}]`},
		{"negative weight", `[{"a": -3}]`},
		{"empty leaf", `[{}]`},
		{"not json", `{{`},
		{"nested offense", `[{"ok": 1}, [{"bad": []}]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.Is(err, apperrors.ErrCodeInvalidTree) {
				t.Errorf("code = %q, want INVALID_TREE", apperrors.GetCode(err))
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	orig := tree.NewBranch(
		tree.NewLeaf("A", 3),
		tree.NewBranch(tree.NewLeaf("B", 1), tree.NewLeaf("C", 1.5)),
	)

	var buf bytes.Buffer
	if err := Write(&buf, orig); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read back: %v", err)
	}
	if back.Total() != orig.Total() {
		t.Errorf("round-trip total = %v, want %v", back.Total(), orig.Total())
	}
	if tree.CountLeaves(back) != 3 || tree.Depth(back) != 3 {
		t.Errorf("round-trip shape changed: %d leaves, depth %d",
			tree.CountLeaves(back), tree.Depth(back))
	}
}

func TestImportExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	orig := tree.NewBranch(tree.NewLeaf("Foo", 34))

	if err := Export(orig, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	back, err := Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if back.Total() != 34 {
		t.Errorf("total = %v, want 34", back.Total())
	}

	if _, err := Import(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Import of missing file should fail")
	}
}

func TestReadTOML(t *testing.T) {
	input := `
[[node]]
label = "A"
weight = 3

[[node]]
  [[node.node]]
  label = "B"
  weight = 1

  [[node.node]]
  label = "C"
  weight = 1
`
	got, err := ReadTOML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if total := got.Total(); total != 5 {
		t.Errorf("total = %v, want 5", total)
	}
	if tree.CountLeaves(got) != 3 {
		t.Errorf("leaves = %d, want 3", tree.CountLeaves(got))
	}

	b := got.(*tree.Branch)
	if leaf, ok := b.Children[0].(*tree.Leaf); !ok || leaf.Label != "A" {
		t.Errorf("first child = %v, want leaf A", b.Children[0])
	}
}

func TestReadTOMLMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty document", ""},
		{"leaf without label", "[[node]]\nweight = 3\n"},
		{"negative weight", "[[node]]\nlabel = \"a\"\nweight = -1\n"},
		{"label and children", "[[node]]\nlabel = \"a\"\n[[node.node]]\nlabel = \"b\"\nweight = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadTOML(strings.NewReader(tt.input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
