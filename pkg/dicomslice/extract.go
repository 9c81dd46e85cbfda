// Package dicomslice parses single-slice DICOM files into slice records.
// Identification is content-based: a buffer is treated as DICOM when it
// carries the DICM magic word and parses, regardless of its filename.
package dicomslice

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicommpr/internal/models"
)

// dicmOffset is the position of the DICM magic word after the 128-byte
// preamble required by PS3.10.
const dicmOffset = 128

// LooksLikeDICOM reports whether buf begins with a DICOM file preamble.
// It is a cheap pre-filter; Parse still decides whether the content is usable.
func LooksLikeDICOM(buf []byte) bool {
	if len(buf) < dicmOffset+4 {
		return false
	}
	return bytes.Equal(buf[dicmOffset:dicmOffset+4], []byte("DICM"))
}

// LooksLikeDICOMPath reports whether a relative path suggests a DICOM file.
// The path is a hint only and is never trusted for parsing.
func LooksLikeDICOMPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".dcm") || strings.HasSuffix(lower, ".dicom")
}

// Parse decodes one DICOM buffer into a SliceRecord. It does not mutate buf.
//
// It fails with models.ErrUnreadableSlice when the buffer is not parseable
// DICOM, and with models.ErrMissingPixelData when the metadata parses but the
// pixel payload is absent, corrupt, or encapsulated in a compressed transfer
// syntax this engine does not decode.
func Parse(buf []byte, sourcePath string) (*models.SliceRecord, error) {
	if !LooksLikeDICOM(buf) {
		return nil, fmt.Errorf("%w: no DICM preamble in %q", models.ErrUnreadableSlice, sourcePath)
	}

	ds, err := dicom.Parse(bytes.NewReader(buf), int64(len(buf)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", models.ErrUnreadableSlice, sourcePath, err)
	}

	rec := &models.SliceRecord{
		RescaleSlope:     1,
		RescaleIntercept: 0,
		SourcePath:       sourcePath,
	}

	rec.Modality, _ = firstString(&ds, tag.Modality)
	rec.PatientName, _ = firstString(&ds, tag.PatientName)
	rec.PatientID, _ = firstString(&ds, tag.PatientID)
	rec.StudyDate, _ = firstString(&ds, tag.StudyDate)

	if v, ok := firstInt(&ds, tag.InstanceNumber); ok {
		rec.InstanceNumber = &v
	}
	if v, ok := firstFloat(&ds, tag.SliceThickness); ok {
		rec.SliceThickness = &v
	}
	if v, ok := firstFloat(&ds, tag.SpacingBetweenSlices); ok {
		rec.SpacingBetweenSlices = &v
	}
	if v, ok := floatList(&ds, tag.PixelSpacing); ok && len(v) == 2 && v[0] > 0 && v[1] > 0 {
		rec.PixelSpacing = &[2]float64{v[0], v[1]}
	}
	if v, ok := floatList(&ds, tag.ImagePositionPatient); ok && len(v) == 3 {
		rec.ImagePosition = &[3]float64{v[0], v[1], v[2]}
	}
	if v, ok := floatList(&ds, tag.ImageOrientationPatient); ok && len(v) == 6 {
		rec.ImageOrientation = &[6]float64{v[0], v[1], v[2], v[3], v[4], v[5]}
	}
	if v, ok := firstFloat(&ds, tag.RescaleSlope); ok {
		rec.RescaleSlope = v
	}
	if v, ok := firstFloat(&ds, tag.RescaleIntercept); ok {
		rec.RescaleIntercept = v
	}
	// Multi-valued window tags carry one value per suggested preset; the
	// first one is the primary suggestion.
	if v, ok := firstFloat(&ds, tag.WindowCenter); ok {
		rec.WindowCenter = &v
	}
	if v, ok := firstFloat(&ds, tag.WindowWidth); ok {
		rec.WindowWidth = &v
	}

	if err := readPixels(&ds, rec, sourcePath); err != nil {
		return nil, err
	}
	return rec, nil
}

// readPixels extracts the first frame of the pixel data element into
// rec.Pixels, sign-extending two's-complement samples when the source
// declares a signed pixel representation.
func readPixels(ds *dicom.Dataset, rec *models.SliceRecord, sourcePath string) error {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return fmt.Errorf("%w: %q has no PixelData element", models.ErrMissingPixelData, sourcePath)
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return fmt.Errorf("%w: %q: malformed PixelData value", models.ErrMissingPixelData, sourcePath)
	}
	if info.IntentionallySkipped || info.IntentionallyUnprocessed || len(info.Frames) == 0 {
		return fmt.Errorf("%w: %q: no decodable frames", models.ErrMissingPixelData, sourcePath)
	}

	fr := info.Frames[0]
	if fr.Encapsulated {
		return fmt.Errorf("%w: %q: encapsulated transfer syntax not supported", models.ErrMissingPixelData, sourcePath)
	}
	native := fr.NativeData
	if native == nil {
		return fmt.Errorf("%w: %q: frame carries no native data", models.ErrMissingPixelData, sourcePath)
	}

	rows, _ := firstInt(ds, tag.Rows)
	cols, _ := firstInt(ds, tag.Columns)
	if rows <= 0 || cols <= 0 {
		rows = native.Rows()
		cols = native.Cols()
	}
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %q: missing image dimensions", models.ErrMissingPixelData, sourcePath)
	}

	pixels, err := samplesToInt32(native.RawDataSlice())
	if err != nil {
		return fmt.Errorf("%w: %q: %v", models.ErrMissingPixelData, sourcePath, err)
	}
	if len(pixels) < rows*cols {
		return fmt.Errorf("%w: %q: frame has %d samples, want %d",
			models.ErrMissingPixelData, sourcePath, len(pixels), rows*cols)
	}
	pixels = pixels[:rows*cols]

	if rep, ok := firstInt(ds, tag.PixelRepresentation); ok && rep == 1 {
		bits, ok := firstInt(ds, tag.BitsStored)
		if !ok || bits <= 0 || bits > 32 {
			bits = native.BitsPerSample()
		}
		signExtend(pixels, bits)
	}

	rec.Pixels = pixels
	rec.Rows = rows
	rec.Columns = cols
	return nil
}

// samplesToInt32 widens a native frame's raw sample slice to int32.
func samplesToInt32(raw any) ([]int32, error) {
	switch v := raw.(type) {
	case []uint8:
		out := make([]int32, len(v))
		for i, s := range v {
			out[i] = int32(s)
		}
		return out, nil
	case []uint16:
		out := make([]int32, len(v))
		for i, s := range v {
			out[i] = int32(s)
		}
		return out, nil
	case []uint32:
		out := make([]int32, len(v))
		for i, s := range v {
			out[i] = int32(s)
		}
		return out, nil
	case []int32:
		out := make([]int32, len(v))
		copy(out, v)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported sample type %T", raw)
	}
}

// signExtend reinterprets stored samples as two's-complement values of the
// given bit depth, in place.
func signExtend(pixels []int32, bits int) {
	if bits <= 0 || bits >= 32 {
		return
	}
	signBit := int32(1) << (bits - 1)
	mask := (int32(1) << bits) - 1
	for i, p := range pixels {
		p &= mask
		if p&signBit != 0 {
			p -= mask + 1
		}
		pixels[i] = p
	}
}

// firstString returns the first value of a string element, trimmed of the
// padding DICOM string VRs allow.
func firstString(ds *dicom.Dataset, t tag.Tag) (string, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return "", false
	}
	if v, ok := el.Value.GetValue().([]string); ok && len(v) > 0 {
		return strings.TrimSpace(v[0]), true
	}
	return "", false
}

// firstFloat returns the first value of an element as a float64. Decimal
// string VRs arrive as strings, so both numeric and string forms are handled.
func firstFloat(ds *dicom.Dataset, t tag.Tag) (float64, bool) {
	vals, ok := floatList(ds, t)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// firstInt returns the first value of an element as an int.
func firstInt(ds *dicom.Dataset, t tag.Tag) (int, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, false
	}
	switch v := el.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// floatList returns all values of an element as float64s.
func floatList(ds *dicom.Dataset, t tag.Tag) ([]float64, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, false
	}
	switch v := el.Value.GetValue().(type) {
	case []float64:
		return v, len(v) > 0
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, len(out) > 0
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, len(out) > 0
	}
	return nil, false
}
