// Package core provides the chromatogram table model
package core

import (
	"fmt"
	"strings"
)

// ChromatogramTable holds all traces extracted from one acquisition file: the
// shared time axis, the base peak chromatogram, and one extracted ion
// chromatogram per metabolite. All columns share the table's row count.
type ChromatogramTable struct {
	SourceFile string
	Time       []float64 // One entry per retained MS1 scan, in the run's time unit
	BPC        []float64 // Base peak intensity per scan

	// EICs in metabolite input order, parallel slices
	Names       []string
	Intensities [][]float64
}

// AddTrace appends one metabolite's intensity column.
func (t *ChromatogramTable) AddTrace(name string, intensities []float64) {
	t.Names = append(t.Names, name)
	t.Intensities = append(t.Intensities, intensities)
}

// Trace returns the intensity column for a metabolite name.
func (t *ChromatogramTable) Trace(name string) ([]float64, bool) {
	for i, n := range t.Names {
		if n == name {
			return t.Intensities[i], true
		}
	}
	return nil, false
}

// Scans returns the number of retained MS1 scans.
func (t *ChromatogramTable) Scans() int {
	return len(t.Time)
}

// Validate checks the shared-row-count invariant across all columns.
func (t *ChromatogramTable) Validate() error {
	var errs []string

	if len(t.BPC) != len(t.Time) {
		errs = append(errs, fmt.Sprintf("BPC has %d rows, time axis has %d", len(t.BPC), len(t.Time)))
	}
	if len(t.Names) != len(t.Intensities) {
		errs = append(errs, fmt.Sprintf("%d trace names for %d traces", len(t.Names), len(t.Intensities)))
	}
	for i, ints := range t.Intensities {
		if len(ints) != len(t.Time) {
			errs = append(errs, fmt.Sprintf("trace %q has %d rows, time axis has %d", t.Names[i], len(ints), len(t.Time)))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "ChromatogramTable",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}
