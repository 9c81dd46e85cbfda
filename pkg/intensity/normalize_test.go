package intensity

import (
	"testing"

	"dicommpr/internal/models"
)

func ctSlice(pixels []int32, rows, cols int) *models.SliceRecord {
	return &models.SliceRecord{
		Pixels:           pixels,
		Rows:             rows,
		Columns:          cols,
		RescaleSlope:     1,
		RescaleIntercept: -1024,
		Modality:         "CT",
	}
}

// TestRescale verifies the modality transform raw*slope + intercept.
func TestRescale(t *testing.T) {
	rec := ctSlice([]int32{0, 1024, 2048}, 1, 3)

	physical := Rescale(rec)

	want := []float64{-1024, 0, 1024}
	for i := range want {
		if physical[i] != want[i] {
			t.Errorf("Pixel %d: expected %v, got %v", i, want[i], physical[i])
		}
	}
}

// TestApplyMonotonic verifies the core windowing property: a larger input
// never maps to a smaller output, for clipped and in-window values alike.
func TestApplyMonotonic(t *testing.T) {
	physical := []float64{-5000, -200, -100, 0, 39.5, 40, 40.5, 100, 200, 5000}
	out := Apply(physical, Window{Center: 40, Width: 400}, 0, 255)

	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Errorf("Order inversion at %d: %v -> %v", i, out[i-1], out[i])
		}
	}
	if out[0] != 0 {
		t.Errorf("Expected value far below window to clip to 0, got %v", out[0])
	}
	if out[len(out)-1] != 255 {
		t.Errorf("Expected value far above window to clip to 255, got %v", out[len(out)-1])
	}
}

// TestApplyLinearMapping checks exact endpoints and midpoint of the window.
func TestApplyLinearMapping(t *testing.T) {
	w := Window{Center: 0, Width: 100}
	out := Apply([]float64{-50, 0, 50}, w, 0, 255)

	if out[0] != 0 || out[2] != 255 {
		t.Errorf("Expected window edges to map to 0 and 255, got %v and %v", out[0], out[2])
	}
	if out[1] != 127.5 {
		t.Errorf("Expected window center to map to 127.5, got %v", out[1])
	}
}

// TestResolveWindowPriority walks the fallback chain: explicit beats
// embedded, embedded beats the modality default, and the modality default
// applies only when the slice has no window of its own.
func TestResolveWindowPriority(t *testing.T) {
	rec := ctSlice([]int32{0, 2048}, 1, 2)
	center, width := 1000.0, 2000.0
	rec.WindowCenter, rec.WindowWidth = &center, &width
	physical := Rescale(rec)

	explicit := &Window{Center: 50, Width: 350}
	if w, _ := ResolveWindow(rec, explicit, physical); w != *explicit {
		t.Errorf("Expected explicit window %v, got %v", *explicit, w)
	}

	if w, _ := ResolveWindow(rec, nil, physical); w.Center != 1000 || w.Width != 2000 {
		t.Errorf("Expected embedded window (1000, 2000), got %v", w)
	}

	rec.WindowCenter, rec.WindowWidth = nil, nil
	if w, _ := ResolveWindow(rec, nil, physical); w != ctDefaultWindow {
		t.Errorf("Expected CT default window %v, got %v", ctDefaultWindow, w)
	}
}

// TestResolveWindowObservedRange verifies the guaranteed-visible fallback
// for a non-CT slice without window metadata.
func TestResolveWindowObservedRange(t *testing.T) {
	rec := &models.SliceRecord{
		Pixels:       []int32{10, 20, 30},
		Rows:         1,
		Columns:      3,
		RescaleSlope: 1,
		Modality:     "MR",
	}
	physical := Rescale(rec)

	w, degraded := ResolveWindow(rec, nil, physical)

	if degraded {
		t.Error("Observed-range fallback is not a degraded window")
	}
	if w.Center != 20 || w.Width != 20 {
		t.Errorf("Expected observed window (20, 20), got %v", w)
	}
}

// TestResolveWindowDegraded verifies that an invalid width substitutes the
// observed dynamic range and flags the result.
func TestResolveWindowDegraded(t *testing.T) {
	rec := ctSlice([]int32{1024, 1124}, 1, 2)
	physical := Rescale(rec) // 0 and 100

	w, degraded := ResolveWindow(rec, &Window{Center: 50, Width: 0}, physical)

	if !degraded {
		t.Error("Expected degraded flag for width <= 0")
	}
	if w.Center != 50 || w.Width != 100 {
		t.Errorf("Expected substituted window (50, 100), got %v", w)
	}
}

// TestNormalizeFlatSlice verifies that a constant slice still yields a well
// defined mapping instead of dividing by zero.
func TestNormalizeFlatSlice(t *testing.T) {
	rec := &models.SliceRecord{
		Pixels:       []int32{7, 7, 7, 7},
		Rows:         2,
		Columns:      2,
		RescaleSlope: 1,
		Modality:     "MR",
	}

	res := Normalize(rec, Options{OutputMin: 0, OutputMax: 255})

	if res.Window.Width != 1 {
		t.Errorf("Expected substituted width 1 for flat slice, got %v", res.Window.Width)
	}
	for i, v := range res.Pixels {
		if v < 0 || v > 255 {
			t.Errorf("Pixel %d out of output range: %v", i, v)
		}
	}
}

// TestNormalizeDeterministic verifies byte-identical output across calls.
func TestNormalizeDeterministic(t *testing.T) {
	rec := ctSlice([]int32{0, 512, 1024, 2048}, 2, 2)
	opts := Options{OutputMin: 0, OutputMax: 1}

	a := Normalize(rec, opts)
	b := Normalize(rec, opts)

	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatalf("Pixel %d differs across identical runs: %v vs %v", i, a.Pixels[i], b.Pixels[i])
		}
	}
}

// TestWindowValuesNilWindow verifies the normalize-on-read path used for raw
// volumes: nil spans the observed range.
func TestWindowValuesNilWindow(t *testing.T) {
	vals := []float64{-100, 0, 100}

	out, applied, degraded := WindowValues(vals, nil, 0, 255)

	if degraded {
		t.Error("Nil window is not degraded")
	}
	if applied.Center != 0 || applied.Width != 200 {
		t.Errorf("Expected observed window (0, 200), got %v", applied)
	}
	if out[0] != 0 || out[2] != 255 {
		t.Errorf("Expected full-range mapping, got %v", out)
	}
}
