// Package mzml provides reading of mzML acquisition files into scan sequences
package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/ChrisMcGann/EICKey/pkg/core"
)

// Controlled vocabulary accessions used when reading spectra
// (http://www.peptideatlas.org/tmp/mzML1.1.0.html)
const (
	cvMSLevel        = "MS:1000511"
	cvScanStartTime  = "MS:1000016"
	cvMZArray        = "MS:1000514"
	cvIntensityArray = "MS:1000515"
	cvFloat64        = "MS:1000523"
	cvFloat32        = "MS:1000521"
	cvZlib           = "MS:1000574"
	cvNoCompression  = "MS:1000576"
	cvUnitMinute     = "UO:0000031"
)

var (
	// ErrNoSpectra means the file contains no spectrum list
	ErrNoSpectra = errors.New("mzML: no spectra found")
	// ErrUnknownFormat means a binary array uses an encoding the reader cannot handle
	ErrUnknownFormat = errors.New("mzML: can't handle binary data format")
)

type cvParam struct {
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}

type binaryDataArray struct {
	CvPar  []cvParam `xml:"cvParam"`
	Binary string    `xml:"binary"`
}

type scan struct {
	CvPar []cvParam `xml:"cvParam"`
}

type spectrum struct {
	Index    int       `xml:"index,attr"`
	ID       string    `xml:"id,attr"`
	CvPar    []cvParam `xml:"cvParam"`
	ScanList struct {
		Scan []scan `xml:"scan"`
	} `xml:"scanList"`
	BinaryDataArrayList struct {
		BinaryDataArray []binaryDataArray `xml:"binaryDataArray"`
	} `xml:"binaryDataArrayList"`
}

// LoadFile reads an mzML file into a time-ordered scan sequence.
func LoadFile(path string) ([]core.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mzML file: %w", err)
	}
	defer f.Close()

	spectra, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range spectra {
		spectra[i].SourceFile = path
	}
	return spectra, nil
}

// Load reads mzML content into a scan sequence. Both plain mzML and
// indexedmzML wrappers are accepted; only the spectrum list is decoded.
func Load(r io.Reader) ([]core.Spectrum, error) {
	decoder := xml.NewDecoder(r)

	var spectra []core.Spectrum
	seen := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mzML parse error: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "spectrum" {
			continue
		}
		seen = true

		var sp spectrum
		if err := decoder.DecodeElement(&sp, &start); err != nil {
			return nil, fmt.Errorf("mzML spectrum parse error: %w", err)
		}
		spec, err := convertSpectrum(&sp)
		if err != nil {
			return nil, fmt.Errorf("spectrum %q: %w", sp.ID, err)
		}
		spectra = append(spectra, spec)
	}

	if !seen {
		return nil, ErrNoSpectra
	}
	return spectra, nil
}

// convertSpectrum turns a parsed XML spectrum into the core IR.
func convertSpectrum(sp *spectrum) (core.Spectrum, error) {
	spec := core.Spectrum{
		MSLevel: 1,
		ScanID:  sp.ID,
	}

	for _, cv := range sp.CvPar {
		if cv.Accession == cvMSLevel && cv.Value != "" {
			level, err := strconv.Atoi(cv.Value)
			if err != nil {
				return spec, fmt.Errorf("invalid ms level %q: %w", cv.Value, err)
			}
			spec.MSLevel = level
		}
	}

	for _, sc := range sp.ScanList.Scan {
		for _, cv := range sc.CvPar {
			if cv.Accession != cvScanStartTime {
				continue
			}
			rt, err := strconv.ParseFloat(cv.Value, 64)
			if err != nil {
				return spec, fmt.Errorf("invalid scan start time %q: %w", cv.Value, err)
			}
			// Scan start times are stored in seconds internally.
			if cv.UnitAccession == cvUnitMinute {
				rt *= 60
			}
			spec.RetentionTime = rt
		}
	}

	var mz, intensity []float64
	for i := range sp.BinaryDataArrayList.BinaryDataArray {
		arr := &sp.BinaryDataArrayList.BinaryDataArray[i]
		isMZ, isIntensity := false, false
		for _, cv := range arr.CvPar {
			switch cv.Accession {
			case cvMZArray:
				isMZ = true
			case cvIntensityArray:
				isIntensity = true
			}
		}
		if !isMZ && !isIntensity {
			continue
		}
		values, err := decodeBinaryArray(arr)
		if err != nil {
			return spec, err
		}
		if isMZ {
			mz = values
		} else {
			intensity = values
		}
	}

	if len(mz) != len(intensity) {
		return spec, fmt.Errorf("m/z array has %d values, intensity array has %d", len(mz), len(intensity))
	}
	spec.Peaks = make([]core.Peak, len(mz))
	for i := range mz {
		spec.Peaks[i] = core.Peak{MZ: mz[i], Intensity: intensity[i]}
	}
	if !spec.ArePeaksSorted() {
		spec.SortPeaks()
	}

	return spec, nil
}

// decodeBinaryArray decodes one base64 (optionally zlib-compressed) binary
// data array of 32- or 64-bit little-endian floats.
func decodeBinaryArray(arr *binaryDataArray) ([]float64, error) {
	is64 := false
	is32 := false
	compressed := false
	for _, cv := range arr.CvPar {
		switch cv.Accession {
		case cvFloat64:
			is64 = true
		case cvFloat32:
			is32 = true
		case cvZlib:
			compressed = true
		case cvNoCompression:
			compressed = false
		}
	}
	if !is64 && !is32 {
		return nil, ErrUnknownFormat
	}

	data, err := base64.StdEncoding.DecodeString(arr.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 binary data: %w", err)
	}

	if compressed {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("invalid zlib binary data: %w", err)
		}
		defer zr.Close()
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress binary data: %w", err)
		}
	}

	if is64 {
		if len(data)%8 != 0 {
			return nil, fmt.Errorf("64-bit float array has %d bytes", len(data))
		}
		values := make([]float64, len(data)/8)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		}
		return values, nil
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("32-bit float array has %d bytes", len(data))
	}
	values := make([]float64, len(data)/4)
	for i := range values {
		values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return values, nil
}
