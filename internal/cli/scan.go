package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mosaiclabs/mosaic/pkg/config"
	"github.com/mosaiclabs/mosaic/pkg/scan"
	"github.com/mosaiclabs/mosaic/pkg/tree"
	"github.com/mosaiclabs/mosaic/pkg/treeio"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	output   string // tree JSON output path, empty means stdout
	workers  int    // walk parallelism, zero picks the default
	minSize  int64  // fold files below this size into an "(other)" leaf
	maxDepth int    // collapse directories deeper than this, zero is unlimited
	follow   bool   // follow symbolic links
}

// newScanCmd creates the scan command, which walks a directory and
// writes its file sizes as a value tree. The output feeds straight
// into render and preview.
func newScanCmd(cfg *config.Config) *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Build a value tree from directory sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			logger.Infof("Scanning %s", args[0])

			p := newProgress(logger)
			t, err := scan.Scan(cmd.Context(), args[0], scan.Options{
				Workers:  opts.workers,
				MinSize:  opts.minSize,
				MaxDepth: opts.maxDepth,
				Follow:   opts.follow,
			})
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Scanned %d entries, %v bytes", tree.CountLeaves(t), t.Total()))

			if opts.output == "" {
				return treeio.Write(cmd.OutOrStdout(), t)
			}
			if err := treeio.Export(t, opts.output); err != nil {
				return err
			}
			logger.Infof("Generated %s", opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "tree JSON output file (default: stdout)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "walk parallelism (0 = auto)")
	cmd.Flags().Int64Var(&opts.minSize, "min-size", 0, "fold files smaller than this many bytes together")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "collapse directories deeper than this (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.follow, "follow", false, "follow symbolic links")

	return cmd
}
