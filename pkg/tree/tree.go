// Package tree defines the weighted value tree consumed by the treemap
// renderer.
//
// A Tree is either a Leaf (a label with a non-negative weight) or a Branch
// (an ordered list of subtrees). The order of a Branch's children is
// significant: it determines the layout order along the active axis and is
// never reordered by weight.
package tree

import (
	"math"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
)

// Tree is a node in a weighted value tree. It is a closed sum type with
// exactly two implementations: *Leaf and *Branch.
type Tree interface {
	// Total returns the reduced value of the subtree: the sum of all leaf
	// weights below (and including) this node. The sum is recomputed on
	// every call; nothing is cached.
	Total() float64

	sealed()
}

// Leaf is a terminal node carrying a label and a non-negative weight.
type Leaf struct {
	Label  string
	Weight float64
}

// NewLeaf creates a leaf with the given label and weight.
func NewLeaf(label string, weight float64) *Leaf {
	return &Leaf{Label: label, Weight: weight}
}

// Total returns the leaf's weight.
func (l *Leaf) Total() float64 { return l.Weight }

func (*Leaf) sealed() {}

// Branch is an internal node holding an ordered sequence of subtrees.
type Branch struct {
	Children []Tree
}

// NewBranch creates a branch over the given children, preserving their order.
func NewBranch(children ...Tree) *Branch {
	return &Branch{Children: children}
}

// Total returns the sum of the reduced values of all children.
func (b *Branch) Total() float64 {
	var sum float64
	for _, c := range b.Children {
		if c != nil {
			sum += c.Total()
		}
	}
	return sum
}

func (*Branch) sealed() {}

// Validate walks the tree and reports the first structural problem found:
// a nil node, a negative weight, or a non-finite weight. A valid tree may
// still have zero-weight leaves; those lay out as zero-size cells.
func Validate(t Tree) error {
	if t == nil {
		return apperrors.New(apperrors.ErrCodeInvalidTree, "tree is nil")
	}
	return validate(t)
}

func validate(t Tree) error {
	switch n := t.(type) {
	case *Leaf:
		if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) {
			return apperrors.New(apperrors.ErrCodeInvalidTree, "leaf %q has non-finite weight", n.Label)
		}
		if n.Weight < 0 {
			return apperrors.New(apperrors.ErrCodeInvalidTree, "leaf %q has negative weight %v", n.Label, n.Weight)
		}
	case *Branch:
		for i, c := range n.Children {
			if c == nil {
				return apperrors.New(apperrors.ErrCodeInvalidTree, "branch has nil child at index %d", i)
			}
			if err := validate(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountLeaves returns the number of leaves in the tree.
func CountLeaves(t Tree) int {
	switch n := t.(type) {
	case *Leaf:
		return 1
	case *Branch:
		count := 0
		for _, c := range n.Children {
			count += CountLeaves(c)
		}
		return count
	}
	return 0
}

// Depth returns the maximum nesting depth of the tree. A single leaf has
// depth 1.
func Depth(t Tree) int {
	switch n := t.(type) {
	case *Leaf:
		return 1
	case *Branch:
		deepest := 0
		for _, c := range n.Children {
			if d := Depth(c); d > deepest {
				deepest = d
			}
		}
		return deepest + 1
	}
	return 0
}
