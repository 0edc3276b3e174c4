// Package extract implements extracted ion chromatogram (EIC) extraction from
// acquisition files.
package extract

import (
	"fmt"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

// Mass tolerance units
const (
	UnitDa  = "Da"
	UnitPPM = "ppm"
)

// Time units
const (
	UnitSeconds = "seconds"
	UnitMinutes = "minutes"
)

// Params holds the extraction parameters for one run. All fields are required;
// the engine applies no implicit defaults.
type Params struct {
	MZUnit           string  // Da or ppm
	MZTolerance      float64 // Half window width in Da, or ppm of the target m/z
	DefaultPeakWidth float64 // RT window width in seconds for rows without their own
	Baseline         float64 // Noise threshold; intensities must exceed it strictly
	TimeUnit         string  // seconds or minutes, unit of the emitted time axis
}

// Validate checks that the parameters are usable.
func (p *Params) Validate() error {
	if p.MZUnit != UnitDa && p.MZUnit != UnitPPM {
		return fmt.Errorf("invalid m/z unit %q, must be %s or %s", p.MZUnit, UnitDa, UnitPPM)
	}
	if p.MZTolerance < 0 {
		return fmt.Errorf("m/z tolerance must be non-negative")
	}
	if p.DefaultPeakWidth < 0 {
		return fmt.Errorf("default peak width must be non-negative")
	}
	if p.Baseline < 0 {
		return fmt.Errorf("baseline must be non-negative")
	}
	if p.TimeUnit != UnitSeconds && p.TimeUnit != UnitMinutes {
		return fmt.Errorf("invalid time unit %q, must be %s or %s", p.TimeUnit, UnitSeconds, UnitMinutes)
	}
	return nil
}

// Tolerance returns the half window width in Da for a target m/z.
// A ppm tolerance scales with the target mass and is recomputed per metabolite.
func (p *Params) Tolerance(mz float64) float64 {
	if p.MZUnit == UnitPPM {
		return mz * p.MZTolerance / 1e6
	}
	return p.MZTolerance
}

// Extract builds the chromatogram table for one acquisition file. The
// metabolite rows must already be validated and converted to seconds; only
// rows with a resolvable m/z produce a trace.
//
// MS level >=2 scans never contribute, neither to the BPC nor to any EIC.
// Scan retention times are in seconds; the emitted time axis is rescaled to
// params.TimeUnit while RT gating always happens in seconds, matching the
// one-time unit conversion applied to the metabolite table.
func Extract(sourceFile string, spectra []core.Spectrum, metabolites []core.Metabolite, params Params) (*core.ChromatogramTable, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Retain MS1 scans only; this fixes the table's time axis.
	var scans []*core.Spectrum
	for i := range spectra {
		if spectra[i].MSLevel >= 2 {
			continue
		}
		scans = append(scans, &spectra[i])
	}

	table := &core.ChromatogramTable{
		SourceFile: sourceFile,
		Time:       make([]float64, len(scans)),
		BPC:        make([]float64, len(scans)),
	}
	for i, scan := range scans {
		rt := scan.RetentionTime
		if params.TimeUnit == UnitMinutes {
			rt /= 60
		}
		table.Time[i] = rt
		table.BPC[i] = scan.BasePeakIntensity()
	}

	for _, met := range metabolites {
		if !met.HasMZ() {
			continue
		}
		table.AddTrace(met.Name, extractTrace(scans, met, params))
	}

	return table, nil
}

// extractTrace computes one metabolite's per-scan intensity column.
func extractTrace(scans []*core.Spectrum, met core.Metabolite, params Params) []float64 {
	tol := params.Tolerance(met.MZ)

	// RT window bounds in seconds, when the row carries a retention time.
	var rtMin, rtMax float64
	gated := met.RT != nil
	if gated {
		width := params.DefaultPeakWidth
		if met.PeakWidth != nil {
			width = *met.PeakWidth
		}
		rtMin = *met.RT - width/2
		rtMax = *met.RT + width/2
	}

	ints := make([]float64, len(scans))
	for i, scan := range scans {
		// Out-of-window scans record zero without a window search.
		if gated && (scan.RetentionTime < rtMin || scan.RetentionTime > rtMax) {
			continue
		}
		idx, found := scan.FindHighestInWindow(met.MZ, tol, tol)
		if !found {
			continue
		}
		// Strictly above baseline; a value equal to the baseline counts as noise.
		if intensity := scan.Peaks[idx].Intensity; intensity > params.Baseline {
			ints[i] = intensity
		}
	}
	return ints
}
