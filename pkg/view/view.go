// Package view extracts 2D cross-sections from an assembled volume along the
// three principal axes. Extraction is pure indexing over the immutable
// volume, so concurrent requests need no locking and a native-axis read
// reproduces the original slice bit for bit.
package view

import (
	"fmt"

	"dicommpr/internal/models"
)

// Plane is one extracted cross-section.
//
// Orientation convention, fixed so repeated requests render consistently:
// native planes keep the acquisition layout, row 0 at the top and column 0 at
// the left. Coronal and sagittal planes walk the through-plane axis down the
// rows, volume slice 0 at the top; coronal columns follow acquisition
// columns, sagittal columns follow acquisition rows.
type Plane struct {
	// Data is the plane in row-major order, Rows*Cols values
	Data []float64
	Rows int
	Cols int

	// RowSpacing and ColSpacing are the physical distances per pixel in mm
	// along the plane's two axes. Aspect-ratio correction (stretching the
	// short axis by their ratio) is the renderer's job; the engine never
	// replicates pixels.
	RowSpacing float64
	ColSpacing float64
}

// Extract returns the cross-section of vol at the given index along axis.
//
// Index mapping over data[z, y, x]:
//
//	native   -> data[index, :, :]  spacing (row, column)
//	coronal  -> data[:, index, :]  spacing (through-plane, column)
//	sagittal -> data[:, :, index]  spacing (through-plane, row)
//
// An index outside [0, extent) fails with models.ErrIndexOutOfBounds rather
// than clamping; callers that want clamping must do it explicitly.
func Extract(vol *models.Volume, axis models.Axis, index int) (*Plane, error) {
	if index < 0 || index >= vol.Extent(axis) {
		return nil, fmt.Errorf("%w: %s index %d, extent %d",
			models.ErrIndexOutOfBounds, axis, index, vol.Extent(axis))
	}

	rows, cols := vol.Rows, vol.Columns
	sp := vol.VoxelSpacing

	switch axis {
	case models.AxisCoronal:
		p := &Plane{
			Data:       make([]float64, vol.Slices*cols),
			Rows:       vol.Slices,
			Cols:       cols,
			RowSpacing: sp.Z,
			ColSpacing: sp.X,
		}
		for z := 0; z < vol.Slices; z++ {
			base := z*rows*cols + index*cols
			copy(p.Data[z*cols:(z+1)*cols], vol.Data[base:base+cols])
		}
		return p, nil

	case models.AxisSagittal:
		p := &Plane{
			Data:       make([]float64, vol.Slices*rows),
			Rows:       vol.Slices,
			Cols:       rows,
			RowSpacing: sp.Z,
			ColSpacing: sp.Y,
		}
		for z := 0; z < vol.Slices; z++ {
			for y := 0; y < rows; y++ {
				p.Data[z*rows+y] = vol.Data[z*rows*cols+y*cols+index]
			}
		}
		return p, nil

	default:
		p := &Plane{
			Data:       make([]float64, rows*cols),
			Rows:       rows,
			Cols:       cols,
			RowSpacing: sp.Y,
			ColSpacing: sp.X,
		}
		copy(p.Data, vol.Data[index*rows*cols:(index+1)*rows*cols])
		return p, nil
	}
}
