package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"
)

func encode64(values []float64) string {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func encode32(values []float64) string {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func encode64Zlib(values []float64) string {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	zw.Write(buf)
	zw.Close()
	return base64.StdEncoding.EncodeToString(compressed.Bytes())
}

func spectrumXML(id string, msLevel int, rt float64, rtUnit string, mzFormat, mzData, intFormat, intData string) string {
	unitAccession := "UO:0000010"
	if rtUnit == "minute" {
		unitAccession = "UO:0000031"
	}
	return fmt.Sprintf(`
	<spectrum index="0" id="%s" defaultArrayLength="2">
		<cvParam accession="MS:1000511" name="ms level" value="%d"/>
		<scanList count="1">
			<scan>
				<cvParam accession="MS:1000016" name="scan start time" value="%g" unitAccession="%s" unitName="%s"/>
			</scan>
		</scanList>
		<binaryDataArrayList count="2">
			<binaryDataArray>
				<cvParam accession="MS:1000514" name="m/z array"/>
				<cvParam accession="%s"/>
				<cvParam accession="MS:1000576" name="no compression"/>
				<binary>%s</binary>
			</binaryDataArray>
			<binaryDataArray>
				<cvParam accession="MS:1000515" name="intensity array"/>
				<cvParam accession="%s"/>
				<cvParam accession="MS:1000576" name="no compression"/>
				<binary>%s</binary>
			</binaryDataArray>
		</binaryDataArrayList>
	</spectrum>`, id, msLevel, rt, unitAccession, rtUnit, mzFormat, mzData, intFormat, intData)
}

func wrapMzML(spectra ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<indexedmzML xmlns="http://psi.hupo.org/ms/mzml">
	<mzML>
		<run id="run1">
			<spectrumList count="` + fmt.Sprint(len(spectra)) + `">` +
		strings.Join(spectra, "") + `
			</spectrumList>
		</run>
	</mzML>
</indexedmzML>`
}

func TestLoad(t *testing.T) {
	doc := wrapMzML(
		spectrumXML("scan=1", 1, 12.5, "second",
			"MS:1000523", encode64([]float64{100.0, 200.0}),
			"MS:1000523", encode64([]float64{500.0, 900.0})),
		spectrumXML("scan=2", 2, 13.0, "second",
			"MS:1000523", encode64([]float64{50.0}),
			"MS:1000523", encode64([]float64{10.0})),
	)

	spectra, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(spectra) != 2 {
		t.Fatalf("Load() returned %d spectra, want 2", len(spectra))
	}

	ms1 := spectra[0]
	if ms1.MSLevel != 1 {
		t.Errorf("MS level = %d, want 1", ms1.MSLevel)
	}
	if ms1.RetentionTime != 12.5 {
		t.Errorf("retention time = %f, want 12.5", ms1.RetentionTime)
	}
	if ms1.ScanID != "scan=1" {
		t.Errorf("scan id = %q, want scan=1", ms1.ScanID)
	}
	if len(ms1.Peaks) != 2 {
		t.Fatalf("peaks = %d, want 2", len(ms1.Peaks))
	}
	if ms1.Peaks[0].MZ != 100.0 || ms1.Peaks[0].Intensity != 500.0 {
		t.Errorf("peak 0 = %+v, want 100/500", ms1.Peaks[0])
	}

	if spectra[1].MSLevel != 2 {
		t.Errorf("second spectrum MS level = %d, want 2", spectra[1].MSLevel)
	}
}

func TestLoadConvertsMinutes(t *testing.T) {
	doc := wrapMzML(
		spectrumXML("scan=1", 1, 2.0, "minute",
			"MS:1000523", encode64([]float64{100.0}),
			"MS:1000523", encode64([]float64{500.0})),
	)

	spectra, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if spectra[0].RetentionTime != 120.0 {
		t.Errorf("retention time = %f, want 120 seconds", spectra[0].RetentionTime)
	}
}

func TestLoad32BitArrays(t *testing.T) {
	doc := wrapMzML(
		spectrumXML("scan=1", 1, 1.0, "second",
			"MS:1000521", encode32([]float64{100.5, 200.25}),
			"MS:1000521", encode32([]float64{10.0, 20.0})),
	)

	spectra, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	peaks := spectra[0].Peaks
	if len(peaks) != 2 {
		t.Fatalf("peaks = %d, want 2", len(peaks))
	}
	if peaks[0].MZ != 100.5 || peaks[1].MZ != 200.25 {
		t.Errorf("m/z values = %f, %f; want 100.5, 200.25", peaks[0].MZ, peaks[1].MZ)
	}
}

func TestLoadZlibCompressed(t *testing.T) {
	mz := spectrumXML("scan=1", 1, 1.0, "second",
		"MS:1000523", encode64Zlib([]float64{100.0, 200.0}),
		"MS:1000523", encode64Zlib([]float64{1.0, 2.0}))
	// Mark the arrays as zlib-compressed.
	mz = strings.ReplaceAll(mz, `accession="MS:1000576" name="no compression"`, `accession="MS:1000574" name="zlib compression"`)

	spectra, err := Load(strings.NewReader(wrapMzML(mz)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(spectra[0].Peaks) != 2 || spectra[0].Peaks[1].MZ != 200.0 {
		t.Errorf("peaks = %+v, want two decompressed peaks", spectra[0].Peaks)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no spectra",
			doc:  `<?xml version="1.0"?><mzML><run><spectrumList count="0"></spectrumList></run></mzML>`,
		},
		{
			name: "mismatched array lengths",
			doc: wrapMzML(spectrumXML("scan=1", 1, 1.0, "second",
				"MS:1000523", encode64([]float64{100.0, 200.0}),
				"MS:1000523", encode64([]float64{1.0}))),
		},
		{
			name: "invalid base64",
			doc: wrapMzML(spectrumXML("scan=1", 1, 1.0, "second",
				"MS:1000523", "!!!not-base64!!!",
				"MS:1000523", encode64([]float64{1.0}))),
		},
		{
			name: "unknown binary format",
			doc: wrapMzML(spectrumXML("scan=1", 1, 1.0, "second",
				"MS:9999999", encode64([]float64{100.0}),
				"MS:1000523", encode64([]float64{1.0}))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.doc)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
