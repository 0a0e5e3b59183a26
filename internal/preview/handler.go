// Package preview renders server-side PNG snapshots of the pleated polygon.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gogpu/gg"

	"github.com/inamate/pleat/internal/asset"
	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/raster"
	"github.com/inamate/pleat/internal/scene"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
	maxDimension  = 2048
)

// FrameLoader resolves a stored frame id to an image.
type FrameLoader interface {
	Load(frameID string) (image.Image, error)
}

// Options configures the rendered scene. Zero values fall back to the
// engine defaults.
type Options struct {
	Radius     float64
	Pleat      float64
	MaxSlices  int
	Background gg.RGBA
}

type Handler struct {
	opts   Options
	frames FrameLoader
	still  func() image.Image
}

// NewHandler creates a preview handler. frames resolves the "frame" query
// parameter; still, if set, supplies the video image when none is named.
func NewHandler(opts Options, frames FrameLoader, still func() image.Image) *Handler {
	if opts.Radius == 0 {
		opts.Radius = 150
	}
	if opts.Pleat == 0 {
		opts.Pleat = 40
	}
	if opts.MaxSlices <= 0 {
		opts.MaxSlices = 12
	}
	return &Handler{opts: opts, frames: frames, still: still}
}

// Request is a parsed scene request.
type Request struct {
	State    *scene.State
	Viewport geom.Viewport
	Video    image.Image
}

// Parse reads the scene from r's query: w, h (pixels), ry, rx (radians),
// slices, mode ("mesh" or "camera") and frame (a stored frame id). On error
// it also returns the HTTP status to answer with.
func (h *Handler) Parse(r *http.Request) (*Request, int, error) {
	q := r.URL.Query()

	width, err := dimension(q.Get("w"), defaultWidth)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid width: %w", err)
	}
	height, err := dimension(q.Get("h"), defaultHeight)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid height: %w", err)
	}

	st := scene.NewState(scene.NewPleatedHexagon(h.opts.Radius, h.opts.Pleat), 1)
	if st.RotationY, err = angle(q.Get("ry")); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid ry: %w", err)
	}
	if st.RotationX, err = angle(q.Get("rx")); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid rx: %w", err)
	}
	if raw := q.Get("slices"); raw != "" {
		n, ok := scene.ParseSliceCount(raw, h.opts.MaxSlices)
		if !ok {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid slices %q", raw)
		}
		st.Slices = n
	}

	req := &Request{
		State:    st,
		Viewport: geom.Viewport{Width: float64(width), Height: float64(height)},
	}

	switch scene.Mode(q.Get("mode")) {
	case "", scene.ModeMesh:
	case scene.ModeCamera:
		st.Mode = scene.ModeCamera
		req.Video, err = h.video(q.Get("frame"))
		if errors.Is(err, asset.ErrNotFound) {
			return nil, http.StatusNotFound, err
		}
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("load frame: %w", err)
		}
		st.VideoReady = req.Video != nil
	default:
		return nil, http.StatusBadRequest, fmt.Errorf("invalid mode %q", q.Get("mode"))
	}
	return req, http.StatusOK, nil
}

// Render rasterizes req's scene as PNG.
func (h *Handler) Render(w io.Writer, req *Request) error {
	frame := engine.Render(req.State, req.Viewport)
	return raster.RenderPNG(w, frame, h.opts.Background, req.Video)
}

// ServeHTTP handles GET /preview.png.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.Parse(r)
	if err != nil {
		if status == http.StatusInternalServerError {
			slog.Error("parse preview", "error", err)
			http.Error(w, "internal error", status)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}

	var buf bytes.Buffer
	if err := h.Render(&buf, req); err != nil {
		slog.Error("render preview", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *Handler) video(frameID string) (image.Image, error) {
	if frameID != "" {
		if h.frames == nil {
			return nil, asset.ErrNotFound
		}
		return h.frames.Load(frameID)
	}
	if h.still == nil {
		return nil, nil
	}
	return h.still(), nil
}

func dimension(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > maxDimension {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func angle(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
