package volume

import (
	"gonum.org/v1/gonum/stat"

	"dicommpr/internal/models"
	"dicommpr/pkg/intensity"
)

// IntensityStats describe the physical-intensity distribution of a volume.
// The observed range backs the auto-window fallback for modalities without
// window metadata.
type IntensityStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summary is the read-only metadata derived once at build time. Patient
// fields are opaque strings taken from the first slice, as the source viewer
// did; they are never validated or interpreted.
type Summary struct {
	PatientName string `json:"patient_name"`
	PatientID   string `json:"patient_id"`
	StudyDate   string `json:"study_date"`
	Modality    string `json:"modality"`

	NumSlices int `json:"num_slices"`
	Rows      int `json:"rows"`
	Columns   int `json:"columns"`

	VoxelSpacing models.VoxelSpacing `json:"voxel_spacing"`

	// Window is the first slice's suggested display window, when present
	Window *intensity.Window `json:"window,omitempty"`

	OrderConfidence  string `json:"order_confidence"`
	SpacingDefaulted bool   `json:"spacing_defaulted"`

	Stats IntensityStats `json:"intensity_stats"`
}

// Summarize derives the metadata summary for a built volume. The first
// record in physical order contributes the identification fields.
func Summarize(vol *models.Volume, records []*models.SliceRecord) *Summary {
	first := records[vol.SliceOrder[0]]

	s := &Summary{
		PatientName:      first.PatientName,
		PatientID:        first.PatientID,
		StudyDate:        first.StudyDate,
		Modality:         first.Modality,
		NumSlices:        vol.Slices,
		Rows:             vol.Rows,
		Columns:          vol.Columns,
		VoxelSpacing:     vol.VoxelSpacing,
		OrderConfidence:  vol.Confidence.String(),
		SpacingDefaulted: vol.SpacingDefaulted,
	}
	if first.WindowCenter != nil && first.WindowWidth != nil {
		s.Window = &intensity.Window{Center: *first.WindowCenter, Width: *first.WindowWidth}
	}

	min, max := minMax(vol.Data)
	s.Stats = IntensityStats{
		Min:    min,
		Max:    max,
		Mean:   stat.Mean(vol.Data, nil),
		StdDev: stat.StdDev(vol.Data, nil),
	}
	return s
}

func minMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
