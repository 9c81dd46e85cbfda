package models

import "errors"

var (
	// ErrUnreadableSlice is returned when a source file cannot be parsed as
	// a DICOM slice at all
	ErrUnreadableSlice = errors.New("unreadable slice")

	// ErrMissingPixelData is returned when a file parses as DICOM but its
	// pixel payload is absent, corrupt, or in an unsupported encoding
	ErrMissingPixelData = errors.New("missing pixel data")

	// ErrInconsistentGeometry is returned when slices destined for one
	// volume disagree on rows or columns
	ErrInconsistentGeometry = errors.New("inconsistent slice geometry")

	// ErrEmptyInput is returned when a volume build receives no slices
	ErrEmptyInput = errors.New("empty slice set")

	// ErrIndexOutOfBounds is returned for view requests outside the extent
	// of the chosen axis; indices are never clamped silently
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrInvalidAxis is returned for unknown axis selectors
	ErrInvalidAxis = errors.New("invalid axis")
)
