// Package raster converts SVG documents to PNG and PDF using the external
// rsvg-convert tool (from librsvg).
//
// Install librsvg to enable these formats:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrToolMissing indicates rsvg-convert is not on PATH.
var ErrToolMissing = errors.New("rsvg-convert not found (install librsvg)")

// ToPNG converts SVG bytes to PNG at the given scale factor. A scale of
// 2.0 produces a 2x resolution image suitable for high-DPI displays.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1.0
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

// ToPDF converts SVG bytes to a single-page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

func convert(svg []byte, args ...string) ([]byte, error) {
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrToolMissing
		}
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("rsvg-convert: %s: %w", bytes.TrimSpace(stderr.Bytes()), err)
		}
		return nil, fmt.Errorf("rsvg-convert: %w", err)
	}
	return out.Bytes(), nil
}
