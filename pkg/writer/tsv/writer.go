// Package tsv writes chromatogram tables and AUC summaries as delimited text files
package tsv

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/EICKey/pkg/auc"
	"github.com/ChrisMcGann/EICKey/pkg/core"
)

const (
	// Row-index label used in summary tables
	indexLabel = "metabolite"
	// File name of the zipped per-file chromatogram tables
	ArchiveName = "chromatograms.zip"
	// File name of the run metadata record
	RunParamsName = "run-params.txt"
)

// WriteChromatogram writes one chromatogram table: columns time, BPC, then one
// column per metabolite.
func WriteChromatogram(w io.Writer, table *core.ChromatogramTable) error {
	header := append([]string{"time", "BPC"}, table.Names...)
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return err
	}

	fields := make([]string, len(header))
	for i := range table.Time {
		fields[0] = formatFloat(table.Time[i])
		fields[1] = formatFloat(table.BPC[i])
		for j, ints := range table.Intensities {
			fields[2+j] = formatFloat(ints[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// WriteMatrix writes an AUC matrix with the metabolite index label and file
// columns sorted by name.
func WriteMatrix(w io.Writer, m *auc.Matrix) error {
	files := m.Files()
	header := append([]string{indexLabel}, files...)
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, name := range m.Names() {
		fields := make([]string, 0, len(files)+1)
		fields = append(fields, name)
		for _, file := range files {
			fields = append(fields, formatFloat(m.Cell(name, file)))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// RunParams is the lightweight per-run metadata record kept next to the
// summaries for reproducibility.
type RunParams struct {
	Baseline float64
	TimeUnit string
}

// WriteRunParams writes the run metadata record.
func WriteRunParams(w io.Writer, p RunParams) error {
	_, err := fmt.Fprintf(w, "%s\n%s", formatFloat(p.Baseline), p.TimeUnit)
	return err
}

// ReadRunParams reads a run metadata record written by WriteRunParams.
func ReadRunParams(r io.Reader) (RunParams, error) {
	var p RunParams
	data, err := io.ReadAll(r)
	if err != nil {
		return p, err
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		return p, fmt.Errorf("run params record has %d lines, want 2", len(lines))
	}
	p.Baseline, err = strconv.ParseFloat(strings.TrimSpace(lines[0]), 64)
	if err != nil {
		return p, fmt.Errorf("invalid baseline value: %w", err)
	}
	p.TimeUnit = strings.TrimSpace(lines[1])
	return p, nil
}

// Writer persists a whole run into a results directory.
type Writer struct {
	dir string
}

// NewWriter creates the results directory, replacing anything already there.
func NewWriter(dir string) (*Writer, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to reset results directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the results directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteChromatograms writes one TSV per chromatogram table and bundles them
// into chromatograms.zip.
func (w *Writer) WriteChromatograms(tables []*core.ChromatogramTable) error {
	zf, err := os.Create(filepath.Join(w.dir, ArchiveName))
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer zf.Close()
	archive := zip.NewWriter(zf)

	for _, table := range tables {
		name := fileStem(table.SourceFile) + ".tsv"

		f, err := os.Create(filepath.Join(w.dir, name))
		if err != nil {
			return fmt.Errorf("failed to create chromatogram table: %w", err)
		}
		if err := WriteChromatogram(f, table); err != nil {
			f.Close()
			return fmt.Errorf("failed to write chromatogram table %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		entry, err := archive.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if err := WriteChromatogram(entry, table); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return zf.Close()
}

// WriteSummaries writes summary.tsv, summary-combined.tsv and the run
// metadata record. Callers must not reach this with an empty matrix.
func (w *Writer) WriteSummaries(raw, combined *auc.Matrix, params RunParams) error {
	if err := w.writeMatrixFile("summary.tsv", raw); err != nil {
		return err
	}
	if err := w.writeMatrixFile("summary-combined.tsv", combined); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(w.dir, RunParamsName))
	if err != nil {
		return fmt.Errorf("failed to create run params record: %w", err)
	}
	defer f.Close()
	if err := WriteRunParams(f, params); err != nil {
		return fmt.Errorf("failed to write run params record: %w", err)
	}
	return f.Close()
}

func (w *Writer) writeMatrixFile(name string, m *auc.Matrix) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()
	if err := WriteMatrix(f, m); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// formatFloat renders integral values without a decimal point and everything
// else in shortest round-trip form.
func formatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
