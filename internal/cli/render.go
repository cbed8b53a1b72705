package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaiclabs/mosaic/pkg/cache"
	"github.com/mosaiclabs/mosaic/pkg/config"
	"github.com/mosaiclabs/mosaic/pkg/observability"
	"github.com/mosaiclabs/mosaic/pkg/raster"
	"github.com/mosaiclabs/mosaic/pkg/structure"
	"github.com/mosaiclabs/mosaic/pkg/tree"
	"github.com/mosaiclabs/mosaic/pkg/treeio"
	"github.com/mosaiclabs/mosaic/pkg/treemap"
)

const (
	vizTreemap   = "treemap"   // slice-and-dice area layout
	vizStructure = "structure" // node-link diagram via graphviz

	pngScale = 2.0 // raster oversampling factor
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	vizTypes []string // visualization types: "treemap", "structure"
	formats  []string // output formats: "svg", "json", "png", "pdf"
	width    float64  // canvas width in pixels
	height   float64  // canvas height in pixels
	style    string   // named style: "plain" or "tinted"
	padding  float64  // cell inset in pixels
	noCache  bool     // bypass the render cache
}

// newRenderCmd creates the render command. Flag defaults come from the
// loaded configuration, so cfg must outlive the returned command.
func newRenderCmd(cfg *config.Config) *cobra.Command {
	var vizTypesStr, formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a value tree to SVG(s)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags not set on the command line fall back to config values.
			if !cmd.Flags().Changed("width") {
				opts.width = cfg.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.height = cfg.Height
			}
			if !cmd.Flags().Changed("style") {
				opts.style = cfg.Style
			}
			if !cmd.Flags().Changed("padding") {
				opts.padding = cfg.Padding
			}

			opts.vizTypes = parseVizTypes(vizTypesStr)
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			if err := validateVizTypes(opts.vizTypes); err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): treemap (default), structure (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 800, "canvas width")
	cmd.Flags().Float64Var(&opts.height, "height", 600, "canvas height")
	cmd.Flags().StringVar(&opts.style, "style", "plain", "named style: "+strings.Join(treemap.StyleNames, ", "))
	cmd.Flags().Float64Var(&opts.padding, "padding", 2, "cell padding")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the render cache")

	return cmd
}

// parseVizTypes parses the --type flag. If empty, defaults to ["treemap"].
func parseVizTypes(s string) []string {
	if s == "" {
		return []string{vizTreemap}
	}
	return strings.Split(s, ",")
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"svg": true, "json": true, "png": true, "pdf": true}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'json', 'png', or 'pdf')", f)
		}
	}
	return nil
}

func validateVizTypes(types []string) error {
	for _, t := range types {
		if t != vizTreemap && t != vizStructure {
			return fmt.Errorf("invalid type: %s (must be 'treemap' or 'structure')", t)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file
// paths, stripping known format extensions.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// importTree loads a value tree from path, picking the codec by file
// extension. TOML files use the [[node]] table form; everything else is
// treated as JSON.
func importTree(path string) (tree.Tree, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var t tree.Tree
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		t, err = treeio.ReadTOML(bytes.NewReader(data))
	} else {
		t, err = treeio.Read(bytes.NewReader(data))
	}
	if err != nil {
		return nil, nil, err
	}
	return t, data, nil
}

// runRender loads the tree from input and renders it to the requested
// type/format combinations.
func runRender(ctx context.Context, cfg *config.Config, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	t, raw, err := importTree(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded tree: %d leaves, total %v", tree.CountLeaves(t), t.Total())

	r := renderJob{cfg: cfg, opts: opts, tree: t, raw: raw}

	if len(opts.vizTypes) == 1 && len(opts.formats) == 1 {
		return r.renderSingle(ctx, opts.vizTypes[0], opts.formats[0], input)
	}
	return r.renderMultiple(ctx, input)
}

// renderJob bundles the loaded tree with its options for output fan-out.
type renderJob struct {
	cfg  *config.Config
	opts *renderOpts
	tree tree.Tree
	raw  []byte
}

func (r renderJob) renderSingle(ctx context.Context, vizType, format, input string) error {
	logger := loggerFromContext(ctx)

	data, err := r.render(ctx, vizType, format)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	outputPath := r.opts.output
	if outputPath == "" {
		outputPath = basePath("", input) + "." + format
	}
	if err := writeOutput(outputPath, data); err != nil {
		return err
	}
	logger.Infof("Generated %s", outputPath)
	return nil
}

func (r renderJob) renderMultiple(ctx context.Context, input string) error {
	logger := loggerFromContext(ctx)
	base := basePath(r.opts.output, input)

	for _, vizType := range r.opts.vizTypes {
		for _, format := range r.opts.formats {
			data, err := r.render(ctx, vizType, format)
			if errors.Is(err, errSkipFormat) {
				logger.Debugf("Skipping %s/%s (unsupported combination)", vizType, format)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s/%s: %w", vizType, format, err)
			}

			var path string
			if len(r.opts.vizTypes) == 1 {
				path = fmt.Sprintf("%s.%s", base, format)
			} else {
				path = fmt.Sprintf("%s_%s.%s", base, vizType, format)
			}
			if err := writeOutput(path, data); err != nil {
				return err
			}
			logger.Infof("Generated %s", path)
		}
	}
	return nil
}

// errSkipFormat marks an unsupported format/visualization combination.
var errSkipFormat = fmt.Errorf("skip unsupported format")

// render dispatches to the appropriate renderer based on vizType.
func (r renderJob) render(ctx context.Context, vizType, format string) ([]byte, error) {
	switch vizType {
	case vizStructure:
		return r.renderStructure(ctx, format)
	case vizTreemap:
		return r.renderTreemap(ctx, format)
	default:
		return nil, fmt.Errorf("unknown visualization type: %s", vizType)
	}
}

// renderStructure generates a node-link diagram using graphviz. JSON
// and PDF are not supported for this view.
func (r renderJob) renderStructure(ctx context.Context, format string) ([]byte, error) {
	logger := loggerFromContext(ctx)
	logger.Info("Generating structure diagram")
	dot := structure.ToDOT(r.tree)

	switch format {
	case "svg":
		return structure.RenderSVG(dot)
	case "png":
		return structure.RenderPNG(dot)
	case "json", "pdf":
		return nil, errSkipFormat
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// renderTreemap generates the slice-and-dice view. The SVG bytes are
// cached keyed on the raw input and options; PNG and PDF rasterize the
// SVG with rsvg-convert.
func (r renderJob) renderTreemap(ctx context.Context, format string) ([]byte, error) {
	logger := loggerFromContext(ctx)

	if format == "json" {
		logger.Info("Rendering treemap layout as JSON")
		renderer, err := r.newRenderer()
		if err != nil {
			return nil, err
		}
		cells, err := renderer.Layout(r.tree, r.opts.width, r.opts.height)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(cells, "", "  ")
	}

	svgData, err := r.renderSVG(ctx)
	if err != nil {
		return nil, err
	}

	switch format {
	case "svg":
		return svgData, nil
	case "png":
		logger.Info("Rasterizing treemap PNG")
		return raster.ToPNG(svgData, pngScale)
	case "pdf":
		logger.Info("Rasterizing treemap PDF")
		return raster.ToPDF(svgData)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func (r renderJob) renderSVG(ctx context.Context) ([]byte, error) {
	logger := loggerFromContext(ctx)

	var store cache.Cache = cache.NewNullCache()
	if !r.opts.noCache {
		if c, err := openCache(ctx, r.cfg); err == nil {
			store = c
		} else {
			logger.Warn("render cache unavailable", "err", err)
		}
	}
	defer store.Close()

	key := cache.RenderKey(r.raw, struct {
		Width   float64 `json:"width"`
		Height  float64 `json:"height"`
		Style   string  `json:"style"`
		Padding float64 `json:"padding"`
	}{r.opts.width, r.opts.height, r.opts.style, r.opts.padding})

	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		logger.Debugf("Cache hit for %s", key[:16])
		return data, nil
	}

	renderer, err := r.newRenderer()
	if err != nil {
		return nil, err
	}

	leaves := tree.CountLeaves(r.tree)
	p := newProgress(logger)
	observability.Render().OnLayoutStart(ctx, leaves)
	doc, err := renderer.Render(r.tree, r.opts.width, r.opts.height)
	observability.Render().OnLayoutComplete(ctx, leaves, time.Since(p.start), err)
	if err != nil {
		return nil, err
	}
	p.done(fmt.Sprintf("Rendered %d cells", leaves))

	data := doc.Bytes()
	observability.Render().OnRenderComplete(ctx, "svg", len(data), time.Since(p.start), nil)
	if err := store.Set(ctx, key, data, renderCacheTTL); err != nil {
		logger.Warn("render cache write failed", "err", err)
	}
	return data, nil
}

func (r renderJob) newRenderer() (*treemap.Renderer, error) {
	renderer := treemap.New()
	if err := renderer.ApplyStyle(r.opts.style); err != nil {
		return nil, err
	}
	renderer.SetPadding(treemap.ConstantPadding(r.opts.padding))
	return renderer, nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path. An empty path
// means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}
