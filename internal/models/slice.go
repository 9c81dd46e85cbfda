package models

// SliceRecord represents a single decoded DICOM slice with its spatial and
// intensity metadata. Optional tags are modeled as pointers so that an absent
// value is distinguishable from a zero value at every decision point.
type SliceRecord struct {
	// Pixels holds the stored sample values in row-major order
	// (Rows*Columns entries). Signed sources are already sign-extended.
	Pixels []int32

	// Rows and Columns are the dimensions of Pixels
	Rows    int
	Columns int

	// PixelSpacing is the physical distance per pixel in mm as
	// (row spacing, column spacing), when the source declares it
	PixelSpacing *[2]float64

	// SliceThickness is the nominal thickness of this slice in mm
	SliceThickness *float64

	// SpacingBetweenSlices is the center-to-center distance to the next
	// slice in mm, which may differ from SliceThickness when slices overlap
	// or have gaps
	SpacingBetweenSlices *float64

	// ImagePosition is the physical coordinate of the first transmitted
	// pixel (ImagePositionPatient), when present
	ImagePosition *[3]float64

	// ImageOrientation holds the row direction cosines followed by the
	// column direction cosines (ImageOrientationPatient), when present
	ImageOrientation *[6]float64

	// InstanceNumber is the acquisition sequence ordinal, when present
	InstanceNumber *int

	// RescaleSlope and RescaleIntercept define the linear transform from
	// stored values to physical intensity units. They default to 1 and 0
	// when the source omits them.
	RescaleSlope     float64
	RescaleIntercept float64

	// WindowCenter and WindowWidth are the suggested display range in
	// physical intensity units, when present
	WindowCenter *float64
	WindowWidth  *float64

	// Modality is the acquisition type tag, e.g. "CT" or "MR"
	Modality string

	// Patient and study identification, passed through as opaque strings
	PatientName string
	PatientID   string
	StudyDate   string

	// SourcePath is the relative path the slice was read from, kept for
	// reporting only
	SourcePath string
}

// PixelAt returns the stored sample value at the given row and column.
func (s *SliceRecord) PixelAt(row, col int) int32 {
	return s.Pixels[row*s.Columns+col]
}
