package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tessnode/internal/dataset"
)

// CreateDatasetCmd creates the dataset command for inspecting a
// ground-truth directory before starting a run.
func CreateDatasetCmd() *cobra.Command {
	var showUnpaired bool

	cmd := &cobra.Command{
		Use:   "dataset <dir>",
		Short: "Inspect a ground-truth dataset directory",
		Long: `Counts the .tif images and .gt.txt transcripts in a directory and reports ` +
			`how many complete training pairs it contains.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			summary, err := dataset.Inspect(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Dataset: %s\n", summary.Path)
			fmt.Printf("  Images:      %d\n", summary.ImageCount)
			fmt.Printf("  Transcripts: %d\n", summary.TextCount)
			fmt.Printf("  Pairs:       %d\n", summary.PairCount)
			if showUnpaired {
				for _, name := range summary.UnpairedImages {
					fmt.Printf("  Unpaired:    %s\n", name)
				}
			} else if len(summary.UnpairedImages) > 0 {
				fmt.Printf("  Unpaired:    %d (use --show-unpaired to list)\n", len(summary.UnpairedImages))
			}

			if !summary.Valid() {
				fmt.Fprintln(os.Stderr, "Error: no usable training pairs found")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&showUnpaired, "show-unpaired", false, "List images without a matching transcript")

	return cmd
}
