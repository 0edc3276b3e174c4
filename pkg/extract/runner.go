package extract

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ChrisMcGann/EICKey/pkg/auc"
	"github.com/ChrisMcGann/EICKey/pkg/core"
)

// Loader turns an acquisition file path into its scan sequence.
type Loader func(path string) ([]core.Spectrum, error)

// SkippedFile records an acquisition file that could not be read.
type SkippedFile struct {
	Path string
	Err  error
}

// Result holds everything a run produced: one chromatogram table per readable
// file, the pruned AUC matrix, and the files that were skipped.
type Result struct {
	Tables  []*core.ChromatogramTable
	Matrix  *auc.Matrix
	Skipped []SkippedFile
}

// Runner extracts chromatograms from a set of acquisition files.
//
// Files are independent of each other, so they are processed by a bounded pool
// of workers. Each worker owns its own result slot; the AUC matrix is filled
// only after all extractions complete, so no locking is needed.
type Runner struct {
	Load    Loader
	Params  Params
	Threads int // Worker count; values below 1 mean sequential
	Logger  *zap.Logger
}

// Run validates the metabolite table, extracts a chromatogram table per file,
// and folds the traces into the AUC matrix.
//
// An unreadable file is logged, recorded in Result.Skipped and does not abort
// the files already processed. When every surviving trace integrates to zero
// the partial Result is returned together with auc.ErrNoDetection, so callers
// can still persist the chromatogram tables while refusing to write an empty
// summary.
func (r *Runner) Run(files []string, table *core.Table) (*Result, error) {
	if err := r.Params.Validate(); err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// RT and peak width arrive in the run's time unit; extraction works in
	// seconds. Convert once, here.
	if r.Params.TimeUnit == UnitMinutes {
		table.ConvertToSeconds()
	}
	metabolites := table.Resolvable()
	logger.Info("starting extraction",
		zap.Int("files", len(files)),
		zap.Int("metabolites", len(metabolites)))

	threads := r.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(files) {
		threads = len(files)
	}

	// Slot-per-file results; workers never share a slot.
	tables := make([]*core.ChromatogramTable, len(files))
	errs := make([]error, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tables[i], errs[i] = r.extractFile(files[i], metabolites, logger)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := &Result{}
	var names []string
	for _, met := range metabolites {
		names = append(names, met.Name)
	}
	result.Matrix = auc.NewMatrix(names)

	for i, path := range files {
		if errs[i] != nil {
			logger.Warn("skipping unreadable file", zap.String("file", path), zap.Error(errs[i]))
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Err: errs[i]})
			continue
		}
		result.Tables = append(result.Tables, tables[i])
		if err := result.Matrix.AddTable(fileColumn(path), tables[i]); err != nil {
			return nil, err
		}
	}

	if len(result.Tables) == 0 && len(result.Skipped) > 0 {
		return result, fmt.Errorf("no acquisition file could be read")
	}

	if err := result.Matrix.Prune(); err != nil {
		return result, err
	}

	logger.Info("extraction complete",
		zap.Int("processed", len(result.Tables)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("detected", len(result.Matrix.Names())))

	return result, nil
}

// fileColumn is the summary column label for an acquisition file: its base name.
func fileColumn(path string) string {
	return filepath.Base(path)
}

func (r *Runner) extractFile(path string, metabolites []core.Metabolite, logger *zap.Logger) (*core.ChromatogramTable, error) {
	logger.Info("extracting chromatograms", zap.String("file", path))
	spectra, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	return Extract(path, spectra, metabolites, r.Params)
}
