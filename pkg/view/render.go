package view

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"dicommpr/internal/models"
	"dicommpr/pkg/intensity"
)

// Render windows a plane into a 16-bit grayscale image. A nil window spans
// the plane's observed intensity range, so a volume with no windowing
// metadata still yields a visible image.
func Render(p *Plane, w *intensity.Window) *image.Gray16 {
	mapped, _, _ := intensity.WindowValues(p.Data, w, 0, 65535)

	img := image.NewGray16(image.Rect(0, 0, p.Cols, p.Rows))
	for y := 0; y < p.Rows; y++ {
		for x := 0; x < p.Cols; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(mapped[y*p.Cols+x])})
		}
	}
	return img
}

// SavePlane writes a windowed plane to a PNG file.
func SavePlane(p *Plane, w *intensity.Window, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, Render(p, w))
}

// SaveSliceSequence extracts every plane along the given axis and writes the
// sequence as numbered PNG files in outputDir.
func SaveSliceSequence(vol *models.Volume, axis models.Axis, w *intensity.Window, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < vol.Extent(axis); pos++ {
		p, err := Extract(vol, axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		if err := SavePlane(p, w, filename); err != nil {
			return fmt.Errorf("failed to save %s: %w", filename, err)
		}
	}
	return nil
}
