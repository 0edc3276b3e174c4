// Package cmd provides CLI command implementations
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Flags for extract command
	tableFile        string
	outputDir        string
	configFile       string
	mzUnit           string
	mzTolerancePPM   float64
	mzToleranceDa    float64
	timeUnit         string
	defaultPeakWidth float64
	baseline         float64
	variantDelimiter string
	threads          int
	dbOutput         bool
	xlsxOutput       bool

	// Flags for mass command
	sumFormula string
	adductName string

	// Logging flags
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "eickey",
	Short: "EICKey - Chromatogram extraction tool",
	Long: `EICKey extracts ion chromatograms (EICs) from mzML acquisition files and
summarizes them into per-sample and per-metabolite tables.

Fast, memory-efficient, and cross-platform extraction with support for:
- Da and ppm mass windows with per-metabolite retention time gating
- Base peak chromatograms and noise baseline thresholding
- Area-under-curve summary matrices with variant combination
- TSV, SQLite and Excel result output`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(massCmd)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	// Extract command flags
	extractCmd.Flags().StringVarP(&tableFile, "table", "t", "", "Metabolite table file (required)")
	extractCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Results directory (required)")
	extractCmd.Flags().StringVarP(&configFile, "config", "c", "", "Run configuration YAML file (flags override its values)")
	extractCmd.Flags().StringVar(&mzUnit, "mz-unit", "ppm", "Mass tolerance unit: ppm or Da")
	extractCmd.Flags().Float64Var(&mzTolerancePPM, "ppm", 10, "Mass tolerance in ppm")
	extractCmd.Flags().Float64Var(&mzToleranceDa, "da", 0.02, "Mass tolerance in Da")
	extractCmd.Flags().StringVar(&timeUnit, "time-unit", "seconds", "Time unit of table RT values and output time axis: seconds or minutes")
	extractCmd.Flags().Float64Var(&defaultPeakWidth, "peak-width", 60, "Default RT window width for metabolites without their own")
	extractCmd.Flags().Float64Var(&baseline, "baseline", 0, "Noise baseline; intensities must exceed it strictly")
	extractCmd.Flags().StringVar(&variantDelimiter, "delimiter", "#", "Variant delimiter in metabolite names")
	extractCmd.Flags().IntVar(&threads, "threads", 1, "Number of worker threads for per-file extraction")
	extractCmd.Flags().BoolVar(&dbOutput, "db", false, "Also store chromatograms in a SQLite database")
	extractCmd.Flags().BoolVar(&xlsxOutput, "xlsx", false, "Also export summaries as an Excel workbook")

	extractCmd.MarkFlagRequired("table")
	extractCmd.MarkFlagRequired("out")

	// Mass command flags
	massCmd.Flags().StringVar(&sumFormula, "formula", "", "Sum formula, e.g. C6H12O6 (required)")
	massCmd.Flags().StringVar(&adductName, "adduct", "[M+H]+", "Adduct, e.g. [M+H]+, [M+Na]+, [M-H]-")
	massCmd.MarkFlagRequired("formula")
}

// newLogger builds the CLI logger from the persistent logging flags.
func newLogger() (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch logLevel {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if logFormat == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
