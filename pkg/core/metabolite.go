// Package core provides metabolite table parsing and validation
package core

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Metabolite defines one extraction target: a name, a target m/z, and an
// optional retention time with an optional per-metabolite peak width.
type Metabolite struct {
	Name      string
	MZ        float64  // Target m/z; rows without one are skipped during extraction
	RT        *float64 // Retention time; nil means no RT gating
	PeakWidth *float64 // RT window width; nil means use the run default
}

// HasMZ reports whether the row carries a usable target m/z.
// NaN counts as absent: it marks a row the user has not finished filling in.
func (m *Metabolite) HasMZ() bool {
	return !math.IsNaN(m.MZ) && m.MZ > 0
}

// Table is an ordered set of metabolite definitions.
type Table struct {
	Rows []Metabolite
}

// DuplicateNameError reports two rows sharing the same metabolite name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("metabolite names need to be unique: %q appears more than once", e.Name)
}

// MissingNameError reports a row without a metabolite name.
type MissingNameError struct {
	Row int // 0-based row index
}

func (e *MissingNameError) Error() string {
	return fmt.Sprintf("row %d: every metabolite needs a name", e.Row)
}

// Validate checks the name invariants: every row named, no name used twice.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Rows))
	for i, row := range t.Rows {
		if row.Name == "" {
			return &MissingNameError{Row: i}
		}
		if seen[row.Name] {
			return &DuplicateNameError{Name: row.Name}
		}
		seen[row.Name] = true
	}
	return nil
}

// Resolvable returns the rows that carry a usable target m/z, preserving order.
// Rows without one are incomplete entries, not errors.
func (t *Table) Resolvable() []Metabolite {
	var rows []Metabolite
	for _, row := range t.Rows {
		if row.HasMZ() {
			rows = append(rows, row)
		}
	}
	return rows
}

// ConvertToSeconds rescales RT and peak width from minutes to seconds in place.
// Must run exactly once, before extraction; time fields are in seconds afterwards.
func (t *Table) ConvertToSeconds() {
	for i := range t.Rows {
		if t.Rows[i].RT != nil {
			*t.Rows[i].RT *= 60
		}
		if t.Rows[i].PeakWidth != nil {
			*t.Rows[i].PeakWidth *= 60
		}
	}
}

// ParseTable reads a delimited metabolite table with a header line naming the
// columns name, mz, rt and peak_width (rt and peak_width optional). Tab and
// comma delimiters are both accepted; empty numeric cells yield absent values.
func ParseTable(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading table: %w", err)
		}
		return nil, fmt.Errorf("metabolite table is empty")
	}

	header := scanner.Text()
	sep := "\t"
	if !strings.Contains(header, "\t") && strings.Contains(header, ",") {
		sep = ","
	}

	cols := make(map[string]int)
	for i, name := range strings.Split(header, sep) {
		cols[normalizeHeader(name)] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("metabolite table needs a 'name' column")
	}
	mzCol, ok := cols["mz"]
	if !ok {
		return nil, fmt.Errorf("metabolite table needs an 'mz' column")
	}
	rtCol, hasRT := cols["rt"]
	pwCol, hasPW := cols["peak_width"]

	table := &Table{}
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, sep)

		row := Metabolite{
			Name: strings.TrimSpace(cell(fields, nameCol)),
			MZ:   math.NaN(),
		}

		if v := strings.TrimSpace(cell(fields, mzCol)); v != "" {
			mz, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid mz value %q: %w", lineNum, v, err)
			}
			row.MZ = mz
		}
		if hasRT {
			rt, err := parseOptionalFloat(cell(fields, rtCol))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid rt value: %w", lineNum, err)
			}
			row.RT = rt
		}
		if hasPW {
			pw, err := parseOptionalFloat(cell(fields, pwCol))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid peak_width value: %w", lineNum, err)
			}
			row.PeakWidth = pw
		}

		table.Rows = append(table.Rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	return table, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// parseOptionalFloat returns nil for empty cells and for NaN values; both mean
// "not set" and fall back to run defaults downstream.
func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}
