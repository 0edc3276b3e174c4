// Package core provides the intermediate representation (IR) models and validation logic
// for chromatogram extraction used by EICKey.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum represents a single scan of an acquisition file.
type Spectrum struct {
	RetentionTime float64 // Scan start time in seconds
	MSLevel       int     // 1 for survey scans, >=2 for fragmentation scans
	Peaks         []Peak  // Centroided peaks, sorted by m/z ascending

	// Internal tracking
	SourceFile string
	ScanID     string
}

// Peak represents a single m/z, intensity pair.
type Peak struct {
	MZ        float64
	Intensity float64
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for processing.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.MSLevel <= 0 {
		errs = append(errs, "MS level must be positive")
	}
	if math.IsNaN(s.RetentionTime) || math.IsInf(s.RetentionTime, 0) {
		errs = append(errs, "retention time is invalid")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	sort.Slice(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// FindHighestInWindow returns the index of the most intense peak whose m/z lies
// within [target-tolLow, target+tolHigh] (both bounds inclusive), or false if no
// peak falls inside the window. On equal intensity the lowest-m/z peak wins: the
// scan runs mass-ascending and a later peak replaces the best only on a strictly
// greater intensity.
func (s *Spectrum) FindHighestInWindow(target, tolLow, tolHigh float64) (int, bool) {
	lo := target - tolLow
	hi := target + tolHigh

	// Peaks are m/z-sorted, so binary-search the lower bound.
	start := sort.Search(len(s.Peaks), func(i int) bool {
		return s.Peaks[i].MZ >= lo
	})

	best := -1
	for i := start; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ > hi {
			break
		}
		if best < 0 || s.Peaks[i].Intensity > s.Peaks[best].Intensity {
			best = i
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// BasePeakIntensity returns the maximum intensity across all peaks in the scan.
// An empty scan has no base peak; it reports zero, meaning "no signal".
func (s *Spectrum) BasePeakIntensity() float64 {
	max := 0.0
	for _, peak := range s.Peaks {
		if peak.Intensity > max {
			max = peak.Intensity
		}
	}
	return max
}
