// Package dicomtest generates synthetic in-memory DICOM files for tests.
// The fixtures mimic a CT-style series: 16-bit monochrome slices with the
// usual spatial, windowing and rescale tags.
package dicomtest

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Params describe one synthetic slice. Zero-valued optional fields are
// omitted from the file so tests can exercise missing-metadata paths.
type Params struct {
	Rows int
	Cols int

	// PixelValue supplies the stored sample for each (row, col); nil fills
	// the slice with row*Cols+col
	PixelValue func(y, x int) uint16

	// Signed sets PixelRepresentation to 1
	Signed bool

	Instance    int       // InstanceNumber, omitted when 0
	Position    []float64 // ImagePositionPatient, len 3
	Orientation []float64 // ImageOrientationPatient, len 6

	PixelSpacing   []float64 // len 2, row then column
	SliceThickness float64
	SpacingBetween float64

	WindowCenter float64 // written together with WindowWidth when width != 0
	WindowWidth  float64

	RescaleSlope     float64 // written together when slope != 0
	RescaleIntercept float64

	Modality string // defaults to "CT"
}

// SliceBytes encodes one synthetic slice as a complete DICOM file.
func SliceBytes(p Params) ([]byte, error) {
	if p.Rows == 0 {
		p.Rows = 4
	}
	if p.Cols == 0 {
		p.Cols = 4
	}
	if p.Modality == "" {
		p.Modality = "CT"
	}

	elements := []*dicom.Element{
		mustElement(tag.MediaStorageSOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
		mustElement(tag.MediaStorageSOPInstanceUID, []string{fmt.Sprintf("1.2.3.%d", p.Instance)}),
		mustElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),

		mustElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
		mustElement(tag.SOPInstanceUID, []string{fmt.Sprintf("1.2.3.%d", p.Instance)}),
		mustElement(tag.PatientName, []string{"Test^Patient^Synthetic"}),
		mustElement(tag.PatientID, []string{"TEST123456"}),
		mustElement(tag.StudyDate, []string{"20240101"}),
		mustElement(tag.Modality, []string{p.Modality}),

		mustElement(tag.SamplesPerPixel, []int{1}),
		mustElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustElement(tag.Rows, []int{p.Rows}),
		mustElement(tag.Columns, []int{p.Cols}),
		mustElement(tag.BitsAllocated, []int{16}),
		mustElement(tag.BitsStored, []int{16}),
		mustElement(tag.HighBit, []int{15}),
		mustElement(tag.PixelRepresentation, []int{boolToInt(p.Signed)}),
	}

	if p.Instance != 0 {
		elements = append(elements, mustElement(tag.InstanceNumber, []string{strconv.Itoa(p.Instance)}))
	}
	if len(p.Position) == 3 {
		elements = append(elements, mustElement(tag.ImagePositionPatient, dsStrings(p.Position)))
	}
	if len(p.Orientation) == 6 {
		elements = append(elements, mustElement(tag.ImageOrientationPatient, dsStrings(p.Orientation)))
	}
	if len(p.PixelSpacing) == 2 {
		elements = append(elements, mustElement(tag.PixelSpacing, dsStrings(p.PixelSpacing)))
	}
	if p.SliceThickness != 0 {
		elements = append(elements, mustElement(tag.SliceThickness, dsStrings([]float64{p.SliceThickness})))
	}
	if p.SpacingBetween != 0 {
		elements = append(elements, mustElement(tag.SpacingBetweenSlices, dsStrings([]float64{p.SpacingBetween})))
	}
	if p.WindowWidth != 0 {
		elements = append(elements,
			mustElement(tag.WindowCenter, dsStrings([]float64{p.WindowCenter})),
			mustElement(tag.WindowWidth, dsStrings([]float64{p.WindowWidth})))
	}
	if p.RescaleSlope != 0 {
		elements = append(elements,
			mustElement(tag.RescaleSlope, dsStrings([]float64{p.RescaleSlope})),
			mustElement(tag.RescaleIntercept, dsStrings([]float64{p.RescaleIntercept})))
	}

	nativeFrame := frame.NewNativeFrame[uint16](16, p.Rows, p.Cols, p.Rows*p.Cols, 1)
	for y := 0; y < p.Rows; y++ {
		for x := 0; x < p.Cols; x++ {
			v := uint16(y*p.Cols + x)
			if p.PixelValue != nil {
				v = p.PixelValue(y, x)
			}
			nativeFrame.RawData[y*p.Cols+x] = v
		}
	}
	elements = append(elements, mustElement(tag.PixelData, dicom.PixelDataInfo{
		Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
	}))

	var buf bytes.Buffer
	if err := dicom.Write(&buf, dicom.Dataset{Elements: elements}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustSliceBytes is SliceBytes for test setup code, panicking on failure.
func MustSliceBytes(p Params) []byte {
	data, err := SliceBytes(p)
	if err != nil {
		panic(err)
	}
	return data
}

func mustElement(t tag.Tag, value interface{}) *dicom.Element {
	el, err := dicom.NewElement(t, value)
	if err != nil {
		panic(err)
	}
	return el
}

func dsStrings(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
