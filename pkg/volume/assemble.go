// Package volume stacks ordered DICOM slices into an immutable 3D volume and
// provides the build pipeline from raw byte buffers to a ready-to-view
// volume with its metadata summary.
package volume

import (
	"fmt"
	"math"

	"dicommpr/internal/models"
	"dicommpr/pkg/intensity"
	"dicommpr/pkg/ordering"
)

// Assemble stacks the records, in the resolved order, into a volume of raw
// physical intensities (stored value * slope + intercept). Keeping physical
// units lets every view be windowed independently on read; windowing before
// assembly would clip information that cannot be recovered.
//
// It fails with models.ErrEmptyInput for an empty set and
// models.ErrInconsistentGeometry when records disagree on rows or columns.
// No partial volume is ever produced.
func Assemble(records []*models.SliceRecord, ord ordering.Result) (*models.Volume, error) {
	if err := checkGeometry(records); err != nil {
		return nil, err
	}
	rows, cols := records[0].Rows, records[0].Columns

	vol := newVolume(records, ord, rows, cols)
	planeSize := rows * cols
	for zi, inputIdx := range ord.Order {
		copy(vol.Data[zi*planeSize:(zi+1)*planeSize], intensity.Rescale(records[inputIdx]))
	}
	return vol, nil
}

// AssembleNormalized stacks the records with a fixed window already applied,
// mapping every voxel into [opts.OutputMin, opts.OutputMax]. This trades
// re-windowing ability for a volume that is ready for direct display, which
// suits one-shot exports.
func AssembleNormalized(records []*models.SliceRecord, ord ordering.Result, opts intensity.Options) (*models.Volume, error) {
	if err := checkGeometry(records); err != nil {
		return nil, err
	}
	rows, cols := records[0].Rows, records[0].Columns

	vol := newVolume(records, ord, rows, cols)
	planeSize := rows * cols
	for zi, inputIdx := range ord.Order {
		res := intensity.Normalize(records[inputIdx], opts)
		copy(vol.Data[zi*planeSize:(zi+1)*planeSize], res.Pixels)
	}
	return vol, nil
}

func checkGeometry(records []*models.SliceRecord) error {
	if len(records) == 0 {
		return models.ErrEmptyInput
	}
	rows, cols := records[0].Rows, records[0].Columns
	for _, rec := range records[1:] {
		if rec.Rows != rows || rec.Columns != cols {
			return fmt.Errorf("%w: %q is %dx%d, want %dx%d",
				models.ErrInconsistentGeometry, rec.SourcePath, rec.Rows, rec.Columns, rows, cols)
		}
	}
	return nil
}

func newVolume(records []*models.SliceRecord, ord ordering.Result, rows, cols int) *models.Volume {
	spacing, defaulted := voxelSpacing(records, ord)
	return &models.Volume{
		Data:             make([]float64, len(ord.Order)*rows*cols),
		Slices:           len(ord.Order),
		Rows:             rows,
		Columns:          cols,
		VoxelSpacing:     spacing,
		SliceOrder:       append([]int(nil), ord.Order...),
		Confidence:       ord.Confidence,
		SpacingDefaulted: defaulted,
		Modality:         records[0].Modality,
	}
}

// voxelSpacing derives the per-axis physical spacing. In-plane spacing comes
// from PixelSpacing; through-plane spacing from the mean delta of consecutive
// position projections when the order is geometric, else from
// SpacingBetweenSlices, else SliceThickness. Any axis that cannot be derived
// is set to 1.0 and the defaulted flag is raised so callers can report
// degraded aspect-ratio accuracy.
func voxelSpacing(records []*models.SliceRecord, ord ordering.Result) (models.VoxelSpacing, bool) {
	spacing := models.VoxelSpacing{Z: 1, Y: 1, X: 1}
	defaulted := false

	if ps := records[0].PixelSpacing; ps != nil {
		spacing.Y = ps[0]
		spacing.X = ps[1]
	} else {
		defaulted = true
	}

	if z, ok := throughPlaneSpacing(records, ord); ok {
		spacing.Z = z
	} else {
		defaulted = true
	}
	return spacing, defaulted
}

func throughPlaneSpacing(records []*models.SliceRecord, ord ordering.Result) (float64, bool) {
	if len(ord.Projections) == len(records) && len(records) > 1 {
		var sum float64
		for i := 1; i < len(ord.Order); i++ {
			sum += math.Abs(ord.Projections[ord.Order[i]] - ord.Projections[ord.Order[i-1]])
		}
		if mean := sum / float64(len(ord.Order)-1); mean > 0 {
			return mean, true
		}
	}
	first := records[0]
	if first.SpacingBetweenSlices != nil && *first.SpacingBetweenSlices > 0 {
		return *first.SpacingBetweenSlices, true
	}
	if first.SliceThickness != nil && *first.SliceThickness > 0 {
		return *first.SliceThickness, true
	}
	return 0, false
}
