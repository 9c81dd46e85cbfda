package models

import (
	"fmt"
	"strings"
)

// Axis selects one of the three orthogonal viewing planes of a volume.
type Axis int

const (
	// AxisNative is the acquisition slicing axis: a native view is exactly
	// one input slice, data[index, :, :]
	AxisNative Axis = iota

	// AxisCoronal fixes a row index, data[:, index, :]
	AxisCoronal

	// AxisSagittal fixes a column index, data[:, :, index]
	AxisSagittal
)

// String returns the lowercase axis name.
func (a Axis) String() string {
	switch a {
	case AxisCoronal:
		return "coronal"
	case AxisSagittal:
		return "sagittal"
	default:
		return "native"
	}
}

// ParseAxis maps an axis name to its Axis value. "axial" is accepted as an
// alias for the native axis, matching common viewer terminology.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "native", "axial":
		return AxisNative, nil
	case "coronal":
		return AxisCoronal, nil
	case "sagittal":
		return AxisSagittal, nil
	default:
		return AxisNative, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
}

// OrderConfidence reports which ordering criterion produced a volume's slice
// order.
type OrderConfidence int

const (
	// OrderGeometric means every slice carried position and orientation
	// metadata and the order follows the through-plane projection
	OrderGeometric OrderConfidence = iota

	// OrderInstanceNumber means the order follows acquisition instance
	// numbers because position metadata was incomplete
	OrderInstanceNumber

	// OrderUnverified means no ordering metadata was available and the
	// input order was preserved; callers should warn that views may be
	// anatomically incorrect
	OrderUnverified
)

// String returns the confidence level as a stable identifier.
func (c OrderConfidence) String() string {
	switch c {
	case OrderInstanceNumber:
		return "instance_number"
	case OrderUnverified:
		return "unverified"
	default:
		return "geometric"
	}
}
