package auc

import (
	"errors"
	"testing"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

func TestTrapezoid(t *testing.T) {
	tests := []struct {
		name      string
		time      []float64
		intensity []float64
		want      float64
	}{
		{
			name:      "trapezoid pulse",
			time:      []float64{0, 1, 2, 3},
			intensity: []float64{0, 10, 10, 0},
			want:      20.0,
		},
		{
			name:      "triangle",
			time:      []float64{0, 1, 2},
			intensity: []float64{0, 10, 0},
			want:      10.0,
		},
		{
			name:      "flat zero",
			time:      []float64{0, 1, 2},
			intensity: []float64{0, 0, 0},
			want:      0.0,
		},
		{
			name:      "uneven spacing",
			time:      []float64{0, 1, 4},
			intensity: []float64{0, 10, 10},
			want:      35.0,
		},
		{
			name:      "single point",
			time:      []float64{1},
			intensity: []float64{5},
			want:      0.0,
		},
		{
			name:      "length mismatch",
			time:      []float64{0, 1},
			intensity: []float64{5},
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trapezoid(tt.time, tt.intensity); got != tt.want {
				t.Errorf("Trapezoid() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMatrixColumnsSorted(t *testing.T) {
	m := NewMatrix([]string{"A"})
	m.SetCell("A", "z.mzML", 1)
	m.SetCell("A", "a.mzML", 2)
	m.SetCell("A", "m.mzML", 3)

	files := m.Files()
	want := []string{"a.mzML", "m.mzML", "z.mzML"}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("Files() = %v, want %v", files, want)
		}
	}
}

func TestMatrixRejectsUnknownRow(t *testing.T) {
	m := NewMatrix([]string{"A"})
	if err := m.SetCell("B", "f.mzML", 1); err == nil {
		t.Error("SetCell() error = nil for unknown row, want error")
	}
}

func TestMatrixAddTable(t *testing.T) {
	table := &core.ChromatogramTable{
		Time: []float64{0, 1, 2},
		BPC:  []float64{1, 1, 1},
	}
	table.AddTrace("A", []float64{0, 10, 0})
	table.AddTrace("B", []float64{0, 0, 0})

	m := NewMatrix([]string{"A", "B"})
	if err := m.AddTable("f.mzML", table); err != nil {
		t.Fatalf("AddTable() error = %v", err)
	}

	if got := m.Cell("A", "f.mzML"); got != 10.0 {
		t.Errorf("Cell(A) = %f, want 10", got)
	}
	if got := m.Cell("B", "f.mzML"); got != 0.0 {
		t.Errorf("Cell(B) = %f, want 0", got)
	}
}

func TestMatrixPrune(t *testing.T) {
	m := NewMatrix([]string{"detected", "silent"})
	m.SetCell("detected", "f1.mzML", 0)
	m.SetCell("detected", "f2.mzML", 42)
	m.SetCell("silent", "f1.mzML", 0)
	m.SetCell("silent", "f2.mzML", 0)

	if err := m.Prune(); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	names := m.Names()
	if len(names) != 1 || names[0] != "detected" {
		t.Errorf("Names() after prune = %v, want [detected]", names)
	}
}

func TestMatrixPruneAllZero(t *testing.T) {
	m := NewMatrix([]string{"A", "B"})
	m.SetCell("A", "f.mzML", 0)
	m.SetCell("B", "f.mzML", 0)

	err := m.Prune()
	if !errors.Is(err, ErrNoDetection) {
		t.Errorf("Prune() error = %v, want ErrNoDetection", err)
	}
	if !m.Empty() {
		t.Error("Empty() = false after pruning everything")
	}
}
