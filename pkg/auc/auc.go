// Package auc reduces chromatogram traces into area-under-curve summary matrices.
package auc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

// ErrNoDetection is returned when every metabolite trace integrated to zero in
// every file: the run finished cleanly but found nothing worth reporting.
var ErrNoDetection = errors.New("no metabolites detected from given input")

// Trapezoid integrates an intensity trace over its time axis using the
// composite trapezoid rule. The time axis must be non-decreasing; the trace is
// never reordered.
func Trapezoid(time, intensity []float64) float64 {
	n := len(time)
	if n != len(intensity) || n < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < n; i++ {
		sum += (time[i] - time[i-1]) * (intensity[i] + intensity[i-1]) / 2
	}
	return sum
}

// Matrix accumulates AUC values with metabolite rows and file columns.
// Rows keep metabolite input order; columns are sorted by file name on output.
type Matrix struct {
	names []string
	files []string
	cells map[string]map[string]float64 // metabolite -> file -> AUC
}

// NewMatrix creates an empty AUC matrix for the given metabolite rows.
func NewMatrix(names []string) *Matrix {
	m := &Matrix{
		names: append([]string(nil), names...),
		cells: make(map[string]map[string]float64, len(names)),
	}
	for _, name := range m.names {
		m.cells[name] = make(map[string]float64)
	}
	return m
}

// SetCell records the AUC for one (metabolite, file) pair.
func (m *Matrix) SetCell(name, file string, value float64) error {
	row, ok := m.cells[name]
	if !ok {
		return fmt.Errorf("unknown metabolite row %q", name)
	}
	if _, seen := row[file]; !seen {
		found := false
		for _, f := range m.files {
			if f == file {
				found = true
				break
			}
		}
		if !found {
			m.files = append(m.files, file)
		}
	}
	row[file] = value
	return nil
}

// AddTable folds one chromatogram table into the matrix, one trapezoidal
// integration per trace.
func (m *Matrix) AddTable(file string, table *core.ChromatogramTable) error {
	for i, name := range table.Names {
		if err := m.SetCell(name, file, Trapezoid(table.Time, table.Intensities[i])); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the metabolite row labels in order.
func (m *Matrix) Names() []string {
	return append([]string(nil), m.names...)
}

// Files returns the file column labels sorted by name.
func (m *Matrix) Files() []string {
	files := append([]string(nil), m.files...)
	sort.Strings(files)
	return files
}

// Cell returns the AUC for a (metabolite, file) pair, zero if unset.
func (m *Matrix) Cell(name, file string) float64 {
	return m.cells[name][file]
}

// Empty reports whether the matrix has no rows.
func (m *Matrix) Empty() bool {
	return len(m.names) == 0
}

// Prune removes rows that are zero in every file: a metabolite detected
// nowhere is reported as absent, not as a row of zeros. Returns ErrNoDetection
// if nothing survives.
func (m *Matrix) Prune() error {
	var kept []string
	for _, name := range m.names {
		row := m.cells[name]
		detected := false
		for _, v := range row {
			if v != 0 {
				detected = true
				break
			}
		}
		if detected {
			kept = append(kept, name)
		} else {
			delete(m.cells, name)
		}
	}
	m.names = kept

	if len(m.names) == 0 {
		return ErrNoDetection
	}
	return nil
}
