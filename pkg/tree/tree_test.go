package tree

import (
	"math"
	"testing"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want float64
	}{
		{"single leaf", NewLeaf("Foo", 34), 34},
		{"flat branch", NewBranch(NewLeaf("A", 1), NewLeaf("B", 2)), 3},
		{
			"nested branch",
			NewBranch(NewLeaf("A", 3), NewBranch(NewLeaf("B", 1), NewLeaf("C", 1))),
			5,
		},
		{"empty branch", NewBranch(), 0},
		{"zero leaves", NewBranch(NewLeaf("A", 0), NewLeaf("B", 0)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tree.Total(); got != tt.want {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalRecomputes(t *testing.T) {
	leaf := NewLeaf("A", 1)
	b := NewBranch(leaf, NewLeaf("B", 1))
	if got := b.Total(); got != 2 {
		t.Fatalf("Total() = %v, want 2", got)
	}

	leaf.Weight = 5
	if got := b.Total(); got != 6 {
		t.Errorf("Total() after mutation = %v, want 6 (no caching)", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tree    Tree
		wantErr bool
	}{
		{"valid nested", NewBranch(NewLeaf("A", 3), NewBranch(NewLeaf("B", 1))), false},
		{"zero weight is valid", NewLeaf("A", 0), false},
		{"nil tree", nil, true},
		{"nil child", &Branch{Children: []Tree{nil}}, true},
		{"negative weight", NewLeaf("A", -1), true},
		{"nan weight", NewLeaf("A", math.NaN()), true},
		{"inf weight", NewLeaf("A", math.Inf(1)), true},
		{"deep nil child", NewBranch(NewLeaf("A", 1), &Branch{Children: []Tree{nil}}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tree)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidTree) {
				t.Errorf("Validate() code = %q, want INVALID_TREE", apperrors.GetCode(err))
			}
		})
	}
}

func TestCountLeaves(t *testing.T) {
	tr := NewBranch(
		NewLeaf("A", 3),
		NewBranch(NewLeaf("B", 1), NewLeaf("C", 1)),
	)
	if got := CountLeaves(tr); got != 3 {
		t.Errorf("CountLeaves = %d, want 3", got)
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		name string
		tree Tree
		want int
	}{
		{"leaf", NewLeaf("A", 1), 1},
		{"flat", NewBranch(NewLeaf("A", 1)), 2},
		{"nested", NewBranch(NewLeaf("A", 1), NewBranch(NewBranch(NewLeaf("B", 1)))), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Depth(tt.tree); got != tt.want {
				t.Errorf("Depth = %d, want %d", got, tt.want)
			}
		})
	}
}
