// Package xlsx exports AUC summary matrices as an Excel workbook
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ChrisMcGann/EICKey/pkg/auc"
)

// WriteSummary writes the raw and combined AUC matrices into one workbook,
// one sheet each, mirroring the TSV summary layout.
func WriteSummary(path string, raw, combined *auc.Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Summary", raw); err != nil {
		return err
	}
	if err := writeSheet(f, "Combined", combined); err != nil {
		return err
	}

	// Drop the default sheet created by excelize.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, m *auc.Matrix) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	files := m.Files()
	header := make([]interface{}, 0, len(files)+1)
	header = append(header, "metabolite")
	for _, file := range files {
		header = append(header, file)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, name := range m.Names() {
		row := make([]interface{}, 0, len(files)+1)
		row = append(row, name)
		for _, file := range files {
			row = append(row, m.Cell(name, file))
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %q: %w", row, sheet, err)
	}
	return nil
}
