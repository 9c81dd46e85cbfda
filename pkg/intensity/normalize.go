// Package intensity converts stored DICOM sample values into display-ready
// intensities: the linear modality rescale into physical units (Hounsfield
// units for CT), followed by windowing into a caller-chosen output range.
//
// All functions are pure and deterministic; normalizing one slice never
// depends on any other slice.
package intensity

import (
	"dicommpr/internal/models"
)

// Window is a display range in physical intensity units: values inside
// [Center-Width/2, Center+Width/2] are mapped across the output range,
// values outside are clipped.
type Window struct {
	Center float64
	Width  float64
}

// Default CT soft-tissue window, used when a CT slice carries no window
// metadata of its own.
var ctDefaultWindow = Window{Center: 40, Width: 400}

// Options configures a normalization pass.
type Options struct {
	// Window overrides every other windowing source when non-nil
	Window *Window

	// OutputMin and OutputMax bound the result range, e.g. 0..255 for
	// 8-bit display or 0..1 for normalized floats
	OutputMin float64
	OutputMax float64
}

// Result is one normalized slice plane.
type Result struct {
	Pixels []float64
	Rows   int
	Cols   int

	// Window is the window that was actually applied
	Window Window

	// DegradedWindow is set when the requested window was invalid
	// (width <= 0) and the observed dynamic range was substituted
	DegradedWindow bool
}

// Rescale applies the modality transform raw*slope + intercept to every
// stored sample of a slice, yielding physical intensity values.
func Rescale(rec *models.SliceRecord) []float64 {
	out := make([]float64, len(rec.Pixels))
	for i, p := range rec.Pixels {
		out[i] = float64(p)*rec.RescaleSlope + rec.RescaleIntercept
	}
	return out
}

// ResolveWindow decides which window to apply to a slice whose physical
// values are given. Priority: explicit caller window, then the slice's own
// window tags, then a modality default, then the observed range of the
// values, which guarantees a visible image with no windowing metadata at all.
//
// The degraded return is true when an invalid width (<= 0) forced a fallback
// to the observed range.
func ResolveWindow(rec *models.SliceRecord, explicit *Window, physical []float64) (Window, bool) {
	if explicit != nil {
		if explicit.Width > 0 {
			return *explicit, false
		}
		return observedWindow(physical), true
	}
	if rec.WindowCenter != nil && rec.WindowWidth != nil {
		w := Window{Center: *rec.WindowCenter, Width: *rec.WindowWidth}
		if w.Width > 0 {
			return w, false
		}
		return observedWindow(physical), true
	}
	if rec.Modality == "CT" {
		return ctDefaultWindow, false
	}
	return observedWindow(physical), false
}

// observedWindow spans the full dynamic range of the given values. A flat
// plane gets a width of 1 so the mapping stays well defined.
func observedWindow(physical []float64) Window {
	min, max := minMax(physical)
	w := Window{Center: (min + max) / 2, Width: max - min}
	if w.Width <= 0 {
		w.Width = 1
	}
	return w
}

// Apply clips values to the window and linearly maps the windowed range onto
// [outMin, outMax]. The mapping is monotone: a larger input never produces a
// smaller output.
func Apply(physical []float64, w Window, outMin, outMax float64) []float64 {
	lo := w.Center - w.Width/2
	hi := w.Center + w.Width/2
	scale := (outMax - outMin) / (hi - lo)

	out := make([]float64, len(physical))
	for i, v := range physical {
		switch {
		case v <= lo:
			out[i] = outMin
		case v >= hi:
			out[i] = outMax
		default:
			out[i] = outMin + (v-lo)*scale
		}
	}
	return out
}

// Normalize runs the full pipeline for one slice: rescale, window
// resolution, clip and map into the output range.
func Normalize(rec *models.SliceRecord, opts Options) Result {
	physical := Rescale(rec)
	w, degraded := ResolveWindow(rec, opts.Window, physical)
	return Result{
		Pixels:         Apply(physical, w, opts.OutputMin, opts.OutputMax),
		Rows:           rec.Rows,
		Cols:           rec.Columns,
		Window:         w,
		DegradedWindow: degraded,
	}
}

// WindowValues windows an already-rescaled plane, for volumes kept in raw
// physical units and windowed on read. A nil window spans the plane's
// observed range, and an invalid width falls back the same way.
func WindowValues(physical []float64, w *Window, outMin, outMax float64) ([]float64, Window, bool) {
	degraded := false
	var applied Window
	switch {
	case w == nil:
		applied = observedWindow(physical)
	case w.Width <= 0:
		applied = observedWindow(physical)
		degraded = true
	default:
		applied = *w
	}
	return Apply(physical, applied, outMin, outMax), applied, degraded
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
