package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

var validateCmd = &cobra.Command{
	Use:   "validate [table]",
	Short: "Validate a metabolite table",
	Long: `Validate that a metabolite table is properly formatted, every row is named,
no name is used twice, and report how many rows carry a target m/z.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open metabolite table: %w", err)
		}
		defer f.Close()

		table, err := core.ParseTable(f)
		if err != nil {
			return fmt.Errorf("failed to parse metabolite table: %w", err)
		}
		if err := table.Validate(); err != nil {
			return err
		}

		resolvable := table.Resolvable()
		fmt.Printf("Table is valid.\n")
		fmt.Printf("Rows: %d\n", len(table.Rows))
		fmt.Printf("Extractable (with m/z): %d\n", len(resolvable))
		if n := len(table.Rows) - len(resolvable); n > 0 {
			fmt.Printf("Incomplete (no m/z, will be skipped): %d\n", n)
		}
		return nil
	},
}
