package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

var massCmd = &cobra.Command{
	Use:   "mass",
	Short: "Calculate the m/z of a sum formula and adduct",
	Long: `Calculate the monoisotopic m/z of a compound from its sum formula and adduct,
for filling in the metabolite table.

Examples:
  eickey mass --formula C6H12O6 --adduct [M+H]+
  eickey mass --formula C8H15NO6 --adduct [M+Na]+`,
	RunE: func(cmd *cobra.Command, args []string) error {
		neutral, err := core.FormulaMass(sumFormula)
		if err != nil {
			return err
		}
		mz, err := core.AdductMZ(neutral, adductName)
		if err != nil {
			return err
		}
		fmt.Printf("Neutral mass: %.6f\n", neutral)
		fmt.Printf("%s %s: %.6f\n", sumFormula, adductName, mz)
		return nil
	},
}
