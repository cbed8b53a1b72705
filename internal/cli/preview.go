package cli

import (
	"github.com/spf13/cobra"

	"github.com/mosaiclabs/mosaic/internal/preview"
)

// newPreviewCmd creates the preview command, an interactive terminal
// treemap over a tree file.
func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [file]",
		Short: "Explore a value tree in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _, err := importTree(args[0])
			if err != nil {
				return err
			}
			return preview.Run(t)
		},
	}
}
