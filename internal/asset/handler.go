package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/inamate/pleat/internal/typeid"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxFrameSide  = 1920     // larger stills are downscaled on upload
)

// ErrNotFound is returned for unknown frame ids.
var ErrNotFound = errors.New("frame not found")

var acceptedTypes = []string{"image/png", "image/jpeg", "image/webp", "image/bmp"}

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Handler stores still frames used as the video source by hosts without a
// camera, and serves them back.
type Handler struct {
	dir      string // directory to store frame files
	onUpload func(id string, img image.Image)
}

// NewHandler creates a new frame handler that stores files in dir.
// onUpload, if set, is called with every decoded upload.
func NewHandler(dir string, onUpload func(id string, img image.Image)) *Handler {
	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create frame dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, onUpload: onUpload}
}

// Upload handles POST /frames/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	// The part's Content-Type is client supplied; trust the bytes instead.
	kind, _ := filetype.Match(data)
	if !accepted(kind.MIME.Value) {
		http.Error(w, "only PNG, JPEG, WebP and BMP images are supported", http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}
	img = fit(img, maxFrameSide)

	frameID := typeid.NewFrameID()
	if err := h.save(frameID, img); err != nil {
		slog.Error("save frame", "error", err, "id", frameID)
		http.Error(w, "failed to save frame", http.StatusInternalServerError)
		return
	}
	if h.onUpload != nil {
		h.onUpload(frameID, img)
	}

	bounds := img.Bounds()
	resp := UploadResponse{
		ID:     frameID,
		URL:    fmt.Sprintf("/frames/%s.png", frameID),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Name:   header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored frame files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/frames/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Frame IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Load decodes a stored frame.
func (h *Handler) Load(frameID string) (image.Image, error) {
	if err := typeid.Validate(frameID, typeid.PrefixFrame); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	f, err := os.Open(h.path(frameID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, frameID)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", frameID, err)
	}
	return img, nil
}

func (h *Handler) save(frameID string, img image.Image) error {
	filePath := h.path(frameID)
	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (h *Handler) path(frameID string) string {
	return filepath.Join(h.dir, frameID+".png")
}

// fit scales img down so neither side exceeds maxSide, keeping its aspect.
func fit(img image.Image, maxSide int) image.Image {
	sz := img.Bounds().Size()
	if sz.X <= maxSide && sz.Y <= maxSide {
		return img
	}
	w, h := maxSide, maxSide
	if sz.X >= sz.Y {
		h = max(1, sz.Y*maxSide/sz.X)
	} else {
		w = max(1, sz.X*maxSide/sz.Y)
	}
	return transform.Resize(img, w, h, transform.Linear)
}

func accepted(contentType string) bool {
	if contentType == "" {
		return false
	}
	for _, t := range acceptedTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}
