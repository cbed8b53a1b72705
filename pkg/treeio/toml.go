package treeio

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// tomlNode is one [[node]] table. A node is a leaf when it carries a label
// and no nested nodes, and a branch otherwise.
type tomlNode struct {
	Label  string     `toml:"label"`
	Weight float64    `toml:"weight"`
	Node   []tomlNode `toml:"node"`
}

type tomlTree struct {
	Node []tomlNode `toml:"node"`
}

// ReadTOML decodes a value tree from TOML. The format uses nested
// arrays-of-tables, preserving declaration order:
//
//	[[node]]
//	label = "Foo"
//	weight = 34
//
//	[[node]]
//	  [[node.node]]
//	  label = "Bar"
//	  weight = 1
func ReadTOML(r io.Reader) (tree.Tree, error) {
	var doc tomlTree
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode TOML tree")
	}
	if len(doc.Node) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "TOML tree has no [[node]] tables")
	}
	return fromTOMLNodes(doc.Node)
}

func fromTOMLNodes(nodes []tomlNode) (tree.Tree, error) {
	b := &tree.Branch{Children: make([]tree.Tree, len(nodes))}
	for i, n := range nodes {
		child, err := fromTOMLNode(n)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		b.Children[i] = child
	}
	return b, nil
}

func fromTOMLNode(n tomlNode) (tree.Tree, error) {
	if len(n.Node) > 0 {
		if n.Label != "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidTree,
				"node %q has both a label and children", n.Label)
		}
		return fromTOMLNodes(n.Node)
	}
	if n.Label == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "leaf node missing label")
	}
	if n.Weight < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree,
			"leaf %q has negative weight %v", n.Label, n.Weight)
	}
	return tree.NewLeaf(n.Label, n.Weight), nil
}

// ImportTOML reads a TOML tree file at path.
func ImportTOML(path string) (tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTOML(f)
}
