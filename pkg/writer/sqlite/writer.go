// Package sqlite provides SQLite database storage for chromatogram runs
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/EICKey/pkg/core"
	_ "github.com/mattn/go-sqlite3"
)

// Date format for RunTable (ISO 8601)
const runDateFormat = "2006-01-02"

// Writer handles writing chromatogram tables to SQLite database files
type Writer struct {
	db        *sql.DB
	fileStmt  *sql.Stmt
	traceStmt *sql.Stmt
	fileID    int
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:     db,
		fileID: 1,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS FileTable (
		FileId INTEGER PRIMARY KEY,
		SourceFile TEXT,
		Scans INTEGER,
		blobTime BLOB,
		blobBPC BLOB
	);

	CREATE TABLE IF NOT EXISTS TraceTable (
		TraceId INTEGER PRIMARY KEY AUTOINCREMENT,
		FileId INTEGER REFERENCES FileTable(FileId),
		Metabolite TEXT,
		blobIntensity BLOB
	);

	CREATE TABLE IF NOT EXISTS RunTable (
		CreationDate TEXT,
		Baseline DOUBLE,
		TimeUnit TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.fileStmt, err = w.db.Prepare(`
		INSERT INTO FileTable (FileId, SourceFile, Scans, blobTime, blobBPC)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file statement: %w", err)
	}

	w.traceStmt, err = w.db.Prepare(`
		INSERT INTO TraceTable (FileId, Metabolite, blobIntensity)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare trace statement: %w", err)
	}

	return nil
}

// WriteChromatogram writes one file's chromatogram table to the database
func (w *Writer) WriteChromatogram(table *core.ChromatogramTable) error {
	if err := table.Validate(); err != nil {
		return err
	}

	_, err := w.fileStmt.Exec(
		w.fileID,
		table.SourceFile,
		table.Scans(),
		encodeFloat64Blob(table.Time),
		encodeFloat64Blob(table.BPC),
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	for i, name := range table.Names {
		_, err := w.traceStmt.Exec(w.fileID, name, encodeFloat64Blob(table.Intensities[i]))
		if err != nil {
			return fmt.Errorf("failed to insert trace %s: %w", name, err)
		}
	}

	w.fileID++
	return nil
}

// encodeFloat64Blob encodes a numeric column as a little-endian float64 blob
func encodeFloat64Blob(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// decodeFloat64Blob decodes a little-endian float64 blob
func decodeFloat64Blob(blob []byte) []float64 {
	values := make([]float64, len(blob)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return values
}

// Finalize writes the run table and closes the database
func (w *Writer) Finalize(baseline float64, timeUnit string) error {
	_, err := w.db.Exec(`
		INSERT INTO RunTable (CreationDate, Baseline, TimeUnit)
		VALUES (?, ?, ?)
	`, time.Now().Format(runDateFormat), baseline, timeUnit)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	if w.fileStmt != nil {
		w.fileStmt.Close()
	}
	if w.traceStmt != nil {
		w.traceStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// RunInfo summarizes a stored run
type RunInfo struct {
	CreationDate string
	Baseline     float64
	TimeUnit     string
	Files        []FileInfo
}

// FileInfo summarizes one stored acquisition file
type FileInfo struct {
	SourceFile string
	Scans      int
	Traces     int
}

// ReadRunInfo reads run metadata and per-file trace counts from a database
// written by Writer.
func ReadRunInfo(path string) (*RunInfo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	info := &RunInfo{}
	err = db.QueryRow(`SELECT CreationDate, Baseline, TimeUnit FROM RunTable`).
		Scan(&info.CreationDate, &info.Baseline, &info.TimeUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	rows, err := db.Query(`
		SELECT f.SourceFile, f.Scans, COUNT(t.TraceId)
		FROM FileTable f LEFT JOIN TraceTable t ON t.FileId = f.FileId
		GROUP BY f.FileId ORDER BY f.FileId
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read file records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fi FileInfo
		if err := rows.Scan(&fi.SourceFile, &fi.Scans, &fi.Traces); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		info.Files = append(info.Files, fi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file records: %w", err)
	}

	return info, nil
}

// ReadChromatogram loads one stored chromatogram table by source file name.
func ReadChromatogram(path, sourceFile string) (*core.ChromatogramTable, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var fileID int
	var timeBlob, bpcBlob []byte
	table := &core.ChromatogramTable{SourceFile: sourceFile}
	err = db.QueryRow(`SELECT FileId, blobTime, blobBPC FROM FileTable WHERE SourceFile = ?`, sourceFile).
		Scan(&fileID, &timeBlob, &bpcBlob)
	if err != nil {
		return nil, fmt.Errorf("failed to read file record: %w", err)
	}
	table.Time = decodeFloat64Blob(timeBlob)
	table.BPC = decodeFloat64Blob(bpcBlob)

	rows, err := db.Query(`SELECT Metabolite, blobIntensity FROM TraceTable WHERE FileId = ? ORDER BY TraceId`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to read traces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan trace: %w", err)
		}
		table.AddTrace(name, decodeFloat64Blob(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read traces: %w", err)
	}

	return table, nil
}
