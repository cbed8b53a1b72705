// Package cli implements the mosaic command-line interface.
//
// Commands cover rendering value trees to SVG and raster formats,
// scanning the filesystem into a value tree, an interactive terminal
// preview, an HTTP render service, and render cache management. All
// commands support --verbose (-v) for debug-level logging; loggers are
// passed through context.Context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mosaiclabs/mosaic/pkg/buildinfo"
	"github.com/mosaiclabs/mosaic/pkg/config"
)

// Execute runs the mosaic CLI and returns an error if any command fails.
//
// The root command wires up all subcommands, loads the configuration
// file, and configures logging based on the --verbose flag. The logger
// is attached to the context and accessible to all commands via
// loggerFromContext. Cancelling ctx stops long-running commands such
// as serve and scan.
func Execute(ctx context.Context) error {
	var (
		verbose bool
		cfgPath string
	)
	cfg := config.Default()

	root := &cobra.Command{
		Use:          "mosaic",
		Short:        "Mosaic renders weighted trees as SVG treemaps",
		Long:         `Mosaic turns hierarchies of weighted values into slice-and-dice treemap images, where every value owns an area proportional to its weight.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)

			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: user config dir)")

	root.AddCommand(newRenderCmd(&cfg))
	root.AddCommand(newScanCmd(&cfg))
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newServeCmd(&cfg))
	root.AddCommand(newCacheCmd(&cfg))

	return root.ExecuteContext(ctx)
}
