package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr error
	}{
		{
			name: "valid table",
			table: &Table{Rows: []Metabolite{
				{Name: "Glc", MZ: 181.07},
				{Name: "GlcNAc", MZ: 222.09},
			}},
			wantErr: nil,
		},
		{
			name: "duplicate name",
			table: &Table{Rows: []Metabolite{
				{Name: "Glc", MZ: 181.07},
				{Name: "Glc", MZ: 203.05},
			}},
			wantErr: &DuplicateNameError{},
		},
		{
			name: "missing name",
			table: &Table{Rows: []Metabolite{
				{Name: "Glc", MZ: 181.07},
				{Name: "", MZ: 203.05},
			}},
			wantErr: &MissingNameError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			switch tt.wantErr.(type) {
			case *DuplicateNameError:
				var dup *DuplicateNameError
				if !errors.As(err, &dup) {
					t.Errorf("Validate() error = %v, want DuplicateNameError", err)
				}
			case *MissingNameError:
				var missing *MissingNameError
				if !errors.As(err, &missing) {
					t.Errorf("Validate() error = %v, want MissingNameError", err)
				}
			}
		})
	}
}

func TestTableResolvable(t *testing.T) {
	table := &Table{Rows: []Metabolite{
		{Name: "complete", MZ: 181.07},
		{Name: "no mz", MZ: math.NaN()},
		{Name: "zero mz", MZ: 0},
		{Name: "also complete", MZ: 222.09},
	}}

	rows := table.Resolvable()
	if len(rows) != 2 {
		t.Fatalf("Resolvable() returned %d rows, want 2", len(rows))
	}
	if rows[0].Name != "complete" || rows[1].Name != "also complete" {
		t.Errorf("Resolvable() rows = %q, %q; input order not preserved", rows[0].Name, rows[1].Name)
	}
}

func TestConvertToSeconds(t *testing.T) {
	table := &Table{Rows: []Metabolite{
		{Name: "gated", MZ: 181.07, RT: floatPtr(5), PeakWidth: floatPtr(0.5)},
		{Name: "ungated", MZ: 222.09},
	}}

	table.ConvertToSeconds()

	if got := *table.Rows[0].RT; got != 300 {
		t.Errorf("RT after conversion = %f, want 300", got)
	}
	if got := *table.Rows[0].PeakWidth; got != 30 {
		t.Errorf("peak width after conversion = %f, want 30", got)
	}
	if table.Rows[1].RT != nil || table.Rows[1].PeakWidth != nil {
		t.Error("absent RT fields must stay absent after conversion")
	}
}

func TestParseTable(t *testing.T) {
	input := "name\tmz\trt\tpeak_width\n" +
		"Glc\t181.0707\t300\t60\n" +
		"GlcNAc#[M+H]+\t222.0972\t\t\n" +
		"unfinished\t\t120\t\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("ParseTable() returned %d rows, want 3", len(table.Rows))
	}

	glc := table.Rows[0]
	if glc.Name != "Glc" || glc.MZ != 181.0707 {
		t.Errorf("row 0 = %+v, want Glc at 181.0707", glc)
	}
	if glc.RT == nil || *glc.RT != 300 {
		t.Errorf("row 0 RT = %v, want 300", glc.RT)
	}
	if glc.PeakWidth == nil || *glc.PeakWidth != 60 {
		t.Errorf("row 0 peak width = %v, want 60", glc.PeakWidth)
	}

	if table.Rows[1].RT != nil {
		t.Error("empty RT cell must parse as absent")
	}
	if table.Rows[2].HasMZ() {
		t.Error("row without mz must not be resolvable")
	}
}

func TestParseTableCommaDelimited(t *testing.T) {
	input := "name,mz,rt\nGlc,181.0707,300\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].MZ != 181.0707 {
		t.Errorf("ParseTable() rows = %+v, want one Glc row", table.Rows)
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "no name column", input: "mz\t100\n"},
		{name: "no mz column", input: "name\nGlc\n"},
		{name: "bad mz value", input: "name\tmz\nGlc\tabc\n"},
		{name: "bad rt value", input: "name\tmz\trt\nGlc\t181\txyz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable(strings.NewReader(tt.input)); err == nil {
				t.Error("ParseTable() error = nil, want error")
			}
		})
	}
}

func TestParseTableNaNPeakWidthFallsBack(t *testing.T) {
	input := "name\tmz\trt\tpeak_width\nGlc\t181.0707\t300\tNaN\n"

	table, err := ParseTable(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if table.Rows[0].PeakWidth != nil {
		t.Error("NaN peak width must parse as absent so the run default applies")
	}
}
