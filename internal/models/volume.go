package models

// VoxelSpacing is the physical distance in mm represented by one array step
// along each volume axis: Z is through-plane, Y is along rows, X is along
// columns.
type VoxelSpacing struct {
	Z float64 `json:"z"`
	Y float64 `json:"y"`
	X float64 `json:"x"`
}

// Volume is the assembled 3D dataset for one slice set.
//
// Data is a flat array in row-major order indexed as
// z*Rows*Columns + y*Columns + x, one physical-intensity value per voxel.
// A Volume is immutable once built and safe for concurrent reads.
type Volume struct {
	Data []float64

	// Slices, Rows and Columns are the extents along Z, Y and X
	Slices  int
	Rows    int
	Columns int

	VoxelSpacing VoxelSpacing

	// SliceOrder maps volume slice index to the position of that record in
	// the input set, recording the ordering used to build Data
	SliceOrder []int

	// Confidence reports how reliable the slice ordering is
	Confidence OrderConfidence

	// SpacingDefaulted is set when one or more voxel spacings could not be
	// derived from metadata and were defaulted to 1.0
	SpacingDefaulted bool

	// Modality of the source slices, used for windowing policy
	Modality string
}

// At returns the voxel value at (z, y, x). Bounds are not checked.
func (v *Volume) At(z, y, x int) float64 {
	return v.Data[z*v.Rows*v.Columns+y*v.Columns+x]
}

// Extent returns the number of planes available along the given axis.
func (v *Volume) Extent(axis Axis) int {
	switch axis {
	case AxisCoronal:
		return v.Rows
	case AxisSagittal:
		return v.Columns
	default:
		return v.Slices
	}
}
