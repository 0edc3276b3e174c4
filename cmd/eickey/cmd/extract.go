package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChrisMcGann/EICKey/pkg/auc"
	"github.com/ChrisMcGann/EICKey/pkg/config"
	"github.com/ChrisMcGann/EICKey/pkg/core"
	"github.com/ChrisMcGann/EICKey/pkg/extract"
	"github.com/ChrisMcGann/EICKey/pkg/reader/mzml"
	"github.com/ChrisMcGann/EICKey/pkg/writer/sqlite"
	"github.com/ChrisMcGann/EICKey/pkg/writer/tsv"
	"github.com/ChrisMcGann/EICKey/pkg/writer/xlsx"
)

var extractCmd = &cobra.Command{
	Use:   "extract [mzML files...]",
	Short: "Extract ion chromatograms from mzML files",
	Long: `Extract ion chromatograms for every metabolite in the table from the given
mzML files, and summarize them into AUC matrices.

Examples:
  # Extract with a 10 ppm window and an RT window of 60 seconds
  eickey extract --table metabolites.tsv --out results --ppm 10 --peak-width 60 file1.mzML file2.mzML

  # Use a Da window and export the summaries as an Excel workbook
  eickey extract --table metabolites.tsv --out results --mz-unit Da --da 0.02 --xlsx *.mzML`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(tableFile)
	if err != nil {
		return fmt.Errorf("failed to open metabolite table: %w", err)
	}
	table, err := core.ParseTable(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse metabolite table: %w", err)
	}

	runner := &extract.Runner{
		Load:    mzml.LoadFile,
		Params:  cfg.Params(),
		Threads: cfg.Threads,
		Logger:  logger,
	}

	result, err := runner.Run(args, table)
	if err != nil && !errors.Is(err, auc.ErrNoDetection) {
		return err
	}
	noDetection := errors.Is(err, auc.ErrNoDetection)

	writer, werr := tsv.NewWriter(outputDir)
	if werr != nil {
		return werr
	}
	if werr := writer.WriteChromatograms(result.Tables); werr != nil {
		return werr
	}

	if dbOutput {
		if werr := writeDatabase(result.Tables, cfg); werr != nil {
			return werr
		}
	}
	if werr := config.Save(filepath.Join(outputDir, "run-config.yaml"), cfg); werr != nil {
		return werr
	}

	// A run that found nothing gets no summary tables; a partial summary would
	// be misleading.
	if noDetection {
		return auc.ErrNoDetection
	}

	combined := auc.Combine(result.Matrix, cfg.VariantDelimiter)
	params := tsv.RunParams{Baseline: cfg.Baseline, TimeUnit: cfg.TimeUnit}
	if werr := writer.WriteSummaries(result.Matrix, combined, params); werr != nil {
		return werr
	}
	if xlsxOutput {
		if werr := xlsx.WriteSummary(filepath.Join(outputDir, "summary.xlsx"), result.Matrix, combined); werr != nil {
			return werr
		}
	}

	for _, skipped := range result.Skipped {
		logger.Warn("file was skipped", zap.String("file", skipped.Path), zap.Error(skipped.Err))
	}
	logger.Info("results written", zap.String("dir", outputDir))
	return nil
}

// loadRunConfig merges the optional config file with the extract flags.
// A flag the user set explicitly wins over the file value.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		config.ApplyDefaults(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("mz-unit") {
		cfg.MZUnit = mzUnit
	}
	if flags.Changed("ppm") {
		cfg.MZTolerancePPM = mzTolerancePPM
	}
	if flags.Changed("da") {
		cfg.MZToleranceDa = mzToleranceDa
	}
	if flags.Changed("time-unit") {
		cfg.TimeUnit = timeUnit
	}
	if flags.Changed("peak-width") {
		cfg.DefaultPeakWidth = defaultPeakWidth
	}
	if flags.Changed("baseline") {
		cfg.Baseline = baseline
	}
	if flags.Changed("delimiter") {
		cfg.VariantDelimiter = variantDelimiter
	}
	if flags.Changed("threads") {
		cfg.Threads = threads
	}
	return cfg, nil
}

func writeDatabase(tables []*core.ChromatogramTable, cfg *config.Config) error {
	w, err := sqlite.NewWriter(filepath.Join(outputDir, "chromatograms.db"))
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := w.WriteChromatogram(table); err != nil {
			return err
		}
	}
	return w.Finalize(cfg.Baseline, cfg.TimeUnit)
}
