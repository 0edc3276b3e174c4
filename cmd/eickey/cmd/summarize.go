package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/EICKey/pkg/writer/sqlite"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [chromatograms.db]",
	Short: "Summarize a chromatogram database",
	Long:  `Print the run parameters and per-file trace counts stored in a chromatogram database written by the extract command.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := sqlite.ReadRunInfo(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run date: %s\n", info.CreationDate)
		fmt.Printf("Baseline: %g\n", info.Baseline)
		fmt.Printf("Time unit: %s\n", info.TimeUnit)
		fmt.Printf("Files: %d\n", len(info.Files))
		for _, fi := range info.Files {
			fmt.Printf("  %s: %d scans, %d traces\n", fi.SourceFile, fi.Scans, fi.Traces)
		}
		return nil
	},
}
