// Package ordering computes the physical order of a set of DICOM slices.
//
// Three criteria are tried in priority order; the first one for which every
// record carries sufficient metadata wins:
//
//  1. Geometric: project each slice's ImagePositionPatient onto the
//     through-plane normal (the cross product of the row and column direction
//     cosines) and sort ascending by that projection. This is robust to
//     acquisition order, gantry tilt, and irregular spacing.
//  2. Instance number: sort ascending by InstanceNumber.
//  3. Unverified: preserve input order and flag the result so callers can
//     warn that the anatomical order is not guaranteed.
//
// Resolution never fails; the confidence annotation communicates reliability.
package ordering

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"dicommpr/internal/models"
)

// Result is a total order over the input records. Order[i] holds the input
// index of the i-th slice in physical order.
type Result struct {
	Order      []int
	Confidence models.OrderConfidence

	// Projections holds the through-plane scalar position of each input
	// record, in input index order. It is only populated for geometric
	// resolutions and is reused for spacing computation downstream.
	Projections []float64
}

// Resolve computes a total order for the given slice records. The sort is
// stable: records with equal projections or instance numbers keep their
// relative input order.
func Resolve(records []*models.SliceRecord) Result {
	n := len(records)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	if n == 1 {
		// A single slice is trivially in geometric order.
		return Result{Order: order, Confidence: models.OrderGeometric}
	}

	if proj, ok := projections(records); ok {
		sort.SliceStable(order, func(a, b int) bool {
			return proj[order[a]] < proj[order[b]]
		})
		return Result{Order: order, Confidence: models.OrderGeometric, Projections: proj}
	}

	if allHaveInstanceNumber(records) {
		sort.SliceStable(order, func(a, b int) bool {
			return *records[order[a]].InstanceNumber < *records[order[b]].InstanceNumber
		})
		return Result{Order: order, Confidence: models.OrderInstanceNumber}
	}

	return Result{Order: order, Confidence: models.OrderUnverified}
}

// projections returns the through-plane scalar position of every record, or
// ok=false when any record lacks position or orientation metadata. The normal
// is taken from the first record; a series with inconsistent orientations has
// no single through-plane axis anyway.
func projections(records []*models.SliceRecord) ([]float64, bool) {
	for _, rec := range records {
		if rec.ImagePosition == nil || rec.ImageOrientation == nil {
			return nil, false
		}
	}

	o := records[0].ImageOrientation
	rowDir := r3.Vec{X: o[0], Y: o[1], Z: o[2]}
	colDir := r3.Vec{X: o[3], Y: o[4], Z: o[5]}
	normal := r3.Cross(rowDir, colDir)
	if r3.Norm(normal) == 0 {
		// Degenerate direction cosines cannot define a slicing axis.
		return nil, false
	}
	normal = r3.Unit(normal)

	proj := make([]float64, len(records))
	for i, rec := range records {
		p := rec.ImagePosition
		proj[i] = r3.Dot(r3.Vec{X: p[0], Y: p[1], Z: p[2]}, normal)
	}
	return proj, true
}

func allHaveInstanceNumber(records []*models.SliceRecord) bool {
	for _, rec := range records {
		if rec.InstanceNumber == nil {
			return false
		}
	}
	return true
}
