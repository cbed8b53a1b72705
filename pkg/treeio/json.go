// Package treeio reads and writes value trees in their wire formats.
//
// The JSON format mirrors the tree shape directly: a branch is an array,
// a leaf is a single-entry object mapping a label to a non-negative number.
//
//	[{"Foo": 34}, [{"Bar": 1}, {"Baz": 2}]]
//
// A TOML format is also supported for hand-authored inputs; see ReadTOML.
package treeio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/mosaiclabs/mosaic/pkg/errors"
	"github.com/mosaiclabs/mosaic/pkg/tree"
)

// Read decodes a JSON value tree from r.
//
// Read returns an INVALID_TREE error when a node is neither an array nor a
// single-entry object, when a leaf maps to a non-numeric value, or when the
// JSON itself is malformed. Sibling order follows the order of array
// elements in the input.
func Read(r io.Reader) (tree.Tree, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode tree")
	}
	return parseNode(raw)
}

func parseNode(raw json.RawMessage) (tree.Tree, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "empty node")
	}

	switch trimmed[0] {
	case '[':
		var children []json.RawMessage
		if err := json.Unmarshal(trimmed, &children); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode branch")
		}
		b := &tree.Branch{Children: make([]tree.Tree, len(children))}
		for i, c := range children {
			child, err := parseNode(c)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			b.Children[i] = child
		}
		return b, nil

	case '{':
		return parseLeaf(trimmed)

	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree,
			"node must be an array (branch) or object (leaf), got %s", shorten(trimmed))
	}
}

func parseLeaf(raw []byte) (tree.Tree, error) {
	var entries map[string]json.Number
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode leaf")
	}
	if len(entries) != 1 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree,
			"leaf must map exactly one label to a value, got %d entries", len(entries))
	}
	for label, num := range entries {
		weight, err := num.Float64()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "leaf %q value", label)
		}
		if weight < 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidTree,
				"leaf %q has negative weight %v", label, weight)
		}
		return tree.NewLeaf(label, weight), nil
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "empty leaf")
}

func shorten(b []byte) string {
	const limit = 40
	s := string(b)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// Write encodes the tree as JSON and writes it to w. The output round-trips
// through Read.
func Write(w io.Writer, t tree.Tree) error {
	v, err := toJSONValue(t)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toJSONValue(t tree.Tree) (any, error) {
	switch n := t.(type) {
	case *tree.Leaf:
		return map[string]float64{n.Label: n.Weight}, nil
	case *tree.Branch:
		out := make([]any, len(n.Children))
		for i, c := range n.Children {
			v, err := toJSONValue(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "nil node")
}

// Import reads a JSON tree file at path.
func Import(path string) (tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Export writes a tree to a JSON file at path.
func Export(t tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, t)
}
