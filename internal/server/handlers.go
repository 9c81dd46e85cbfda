package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dicommpr/internal/models"
	"dicommpr/pkg/config"
	"dicommpr/pkg/ingest"
	"dicommpr/pkg/intensity"
	"dicommpr/pkg/session"
	"dicommpr/pkg/view"
	"dicommpr/pkg/volume"
)

type uploadResponse struct {
	Success      bool            `json:"success"`
	SessionID    string          `json:"session_id"`
	Metadata     *volume.Summary `json:"metadata"`
	SkippedFiles []string        `json:"skipped_files,omitempty"`
}

type sliceResponse struct {
	Image       string `json:"image"`
	SliceIdx    int    `json:"slice_idx"`
	TotalSlices int    `json:"total_slices"`
}

type planeResponse struct {
	Image      string     `json:"image"`
	Axis       string     `json:"axis"`
	Index      int        `json:"index"`
	Extent     int        `json:"extent"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Spacing    [2]float64 `json:"spacing"`
	Window     [2]float64 `json:"window"`
	Degraded   bool       `json:"degraded_window"`
	Confidence string     `json:"order_confidence"`
}

type viewsResponse struct {
	Axial       string `json:"axial"`
	Coronal     string `json:"coronal"`
	Sagittal    string `json:"sagittal"`
	VolumeShape [3]int `json:"volume_shape"`
	Confidence  string `json:"order_confidence"`
}

// PostUploadHandler accepts a ZIP archive of DICOM slices, builds the volume
// and opens a session for it.
func PostUploadHandler(cfg *config.Config, store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
		}

		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot open upload")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read upload")
		}

		inputs, err := ingest.FromZip(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "not a readable ZIP archive")
		}
		if len(inputs) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no DICOM files found in the ZIP")
		}

		result, err := volume.Build(inputs, volume.BuildOptions{Workers: cfg.Processing.Workers})
		if err != nil {
			return httpError(err)
		}

		id := store.Create(session.Entry{
			Volume:  result.Volume,
			Summary: result.Summary,
			Report:  result.Report,
		})

		resp := uploadResponse{
			Success:   true,
			SessionID: id,
			Metadata:  result.Summary,
		}
		for _, failure := range result.Report.Failures {
			resp.SkippedFiles = append(resp.SkippedFiles, failure.Path)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// GetMetadataHandler returns the build-time metadata summary of a session.
func GetMetadataHandler(store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("session")
		entry, err := store.Acquire(id)
		if err != nil {
			return httpError(err)
		}
		defer store.Release(id)

		return c.JSON(http.StatusOK, entry.Summary)
	}
}

// GetSliceHandler returns one native-axis slice as a base64 PNG.
func GetSliceHandler(cfg *config.Config, store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("session")
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "slice index must be an integer")
		}

		entry, err := store.Acquire(id)
		if err != nil {
			return httpError(err)
		}
		defer store.Release(id)

		p, err := view.Extract(entry.Volume, models.AxisNative, index)
		if err != nil {
			return httpError(err)
		}

		img, err := encodePlane(p, requestWindow(c, cfg, entry))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, sliceResponse{
			Image:       img,
			SliceIdx:    index,
			TotalSlices: entry.Volume.Slices,
		})
	}
}

// GetMPRHandler returns a single cross-section along any axis, with the
// physical pixel spacing the client needs for aspect-ratio correction.
func GetMPRHandler(cfg *config.Config, store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("session")
		axis, err := models.ParseAxis(c.Param("axis"))
		if err != nil {
			return httpError(err)
		}
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "index must be an integer")
		}

		entry, err := store.Acquire(id)
		if err != nil {
			return httpError(err)
		}
		defer store.Release(id)

		p, err := view.Extract(entry.Volume, axis, index)
		if err != nil {
			return httpError(err)
		}

		mapped, applied, degraded := intensity.WindowValues(
			p.Data, requestWindow(c, cfg, entry), 0, 65535)
		img, err := encodeMapped(mapped, p.Rows, p.Cols)
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, planeResponse{
			Image:      img,
			Axis:       axis.String(),
			Index:      index,
			Extent:     entry.Volume.Extent(axis),
			Rows:       p.Rows,
			Cols:       p.Cols,
			Spacing:    [2]float64{p.RowSpacing, p.ColSpacing},
			Window:     [2]float64{applied.Center, applied.Width},
			Degraded:   degraded,
			Confidence: entry.Volume.Confidence.String(),
		})
	}
}

// GetViewsHandler returns the middle cross-section of each axis in one shot,
// the landing view of the original viewer.
func GetViewsHandler(cfg *config.Config, store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("session")
		entry, err := store.Acquire(id)
		if err != nil {
			return httpError(err)
		}
		defer store.Release(id)

		vol := entry.Volume
		w := requestWindow(c, cfg, entry)

		images := make(map[models.Axis]string, 3)
		for _, axis := range []models.Axis{models.AxisNative, models.AxisCoronal, models.AxisSagittal} {
			p, err := view.Extract(vol, axis, vol.Extent(axis)/2)
			if err != nil {
				return httpError(err)
			}
			img, err := encodePlane(p, w)
			if err != nil {
				return httpError(err)
			}
			images[axis] = img
		}

		return c.JSON(http.StatusOK, viewsResponse{
			Axial:       images[models.AxisNative],
			Coronal:     images[models.AxisCoronal],
			Sagittal:    images[models.AxisSagittal],
			VolumeShape: [3]int{vol.Slices, vol.Rows, vol.Columns},
			Confidence:  vol.Confidence.String(),
		})
	}
}

// DeleteSessionHandler evicts a session. In-flight reads finish first.
func DeleteSessionHandler(store *session.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Remove(c.Param("session")); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// requestWindow picks the display window for a request: explicit query
// parameters first, then the server-wide configured override, then the
// volume's own suggested window. nil means "span the plane's observed range".
func requestWindow(c echo.Context, cfg *config.Config, entry session.Entry) *intensity.Window {
	centerParam := c.QueryParam("center")
	widthParam := c.QueryParam("width")
	if centerParam != "" && widthParam != "" {
		center, errC := strconv.ParseFloat(centerParam, 64)
		width, errW := strconv.ParseFloat(widthParam, 64)
		if errC == nil && errW == nil {
			return &intensity.Window{Center: center, Width: width}
		}
	}
	if cfg.Display.WindowWidth > 0 {
		return &intensity.Window{Center: cfg.Display.WindowCenter, Width: cfg.Display.WindowWidth}
	}
	return entry.Summary.Window
}

// encodePlane windows and encodes a plane as a base64 PNG data URL.
func encodePlane(p *view.Plane, w *intensity.Window) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, view.Render(p, w)); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// encodeMapped encodes already-windowed values (0..65535) as a base64 PNG
// data URL.
func encodeMapped(mapped []float64, rows, cols int) (string, error) {
	p := &view.Plane{Data: mapped, Rows: rows, Cols: cols}
	full := intensity.Window{Center: 65535.0 / 2, Width: 65535}
	var buf bytes.Buffer
	if err := png.Encode(&buf, view.Render(p, &full)); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// httpError maps engine errors onto HTTP statuses. Advisory flags are never
// errors; only genuine failures reach here.
func httpError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, models.ErrIndexOutOfBounds),
		errors.Is(err, models.ErrInvalidAxis),
		errors.Is(err, models.ErrEmptyInput),
		errors.Is(err, models.ErrInconsistentGeometry):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
