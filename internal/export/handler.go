// Package export encodes turntable animations of the pleated polygon with
// ffmpeg.
package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inamate/pleat/internal/preview"
)

const (
	defaultFrames = 36
	maxFrames     = 360
	defaultFPS    = 24
)

// Scenes parses and renders a single frame.
type Scenes interface {
	Parse(r *http.Request) (*preview.Request, int, error)
	Render(w io.Writer, req *preview.Request) error
}

type Handler struct {
	ffmpegPath string
	scenes     Scenes
}

func NewHandler(ffmpegPath string, scenes Scenes) *Handler {
	return &Handler{ffmpegPath: ffmpegPath, scenes: scenes}
}

// ExportTurntable handles GET /export/turntable. It takes the preview query
// parameters plus format (mp4, gif or webm), frames, fps and name, renders
// one full yaw revolution starting at ry and returns the encoded file.
func (h *Handler) ExportTurntable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "gif"
	}
	if format != "mp4" && format != "gif" && format != "webm" {
		http.Error(w, "invalid format: must be mp4, gif, or webm", http.StatusBadRequest)
		return
	}

	frames, err := strconv.Atoi(q.Get("frames"))
	if err != nil || frames <= 0 {
		frames = defaultFrames
	}
	frames = min(frames, maxFrames)

	fps, err := strconv.Atoi(q.Get("fps"))
	if err != nil || fps <= 0 || fps > 120 {
		fps = defaultFPS
	}

	name := q.Get("name")
	if name == "" {
		name = "pleat"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	req, status, err := h.scenes.Parse(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	// Create temp directory for frames
	tempDir, err := os.MkdirTemp("", "pleat-export-*")
	if err != nil {
		slog.Error("create temp dir", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tempDir)

	if err := h.renderFrames(req, frames, tempDir); err != nil {
		slog.Error("render turntable", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.Info("export started", "format", format, "frames", frames, "fps", fps)

	// Build and run ffmpeg command
	var outputFile string
	var contentType string
	var cmdErr error
	input := filepath.Join(tempDir, "frame_%04d.png")

	switch format {
	case "mp4":
		outputFile = filepath.Join(tempDir, "output.mp4")
		contentType = "video/mp4"
		cmdErr = h.runFfmpeg(r,
			"-framerate", strconv.Itoa(fps),
			"-i", input,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-crf", "18",
			"-preset", "fast",
			"-movflags", "+faststart",
			outputFile,
		)

	case "gif":
		outputFile = filepath.Join(tempDir, "output.gif")
		contentType = "image/gif"
		// Two-pass GIF: generate palette then apply
		palettePath := filepath.Join(tempDir, "palette.png")
		cmdErr = h.runFfmpeg(r,
			"-framerate", strconv.Itoa(fps),
			"-i", input,
			"-vf", "palettegen=stats_mode=diff",
			palettePath,
		)
		if cmdErr == nil {
			cmdErr = h.runFfmpeg(r,
				"-framerate", strconv.Itoa(fps),
				"-i", input,
				"-i", palettePath,
				"-lavfi", "paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
				outputFile,
			)
		}

	case "webm":
		outputFile = filepath.Join(tempDir, "output.webm")
		contentType = "video/webm"
		cmdErr = h.runFfmpeg(r,
			"-framerate", strconv.Itoa(fps),
			"-i", input,
			"-c:v", "libvpx-vp9",
			"-crf", "30",
			"-b:v", "0",
			"-pix_fmt", "yuv420p",
			outputFile,
		)
	}

	if cmdErr != nil {
		slog.Error("ffmpeg failed", "error", cmdErr)
		http.Error(w, fmt.Sprintf("encoding failed: %v", cmdErr), http.StatusInternalServerError)
		return
	}

	// Stream result file back
	outFile, err := os.Open(outputFile)
	if err != nil {
		slog.Error("open output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer outFile.Close()

	stat, err := outFile.Stat()
	if err != nil {
		slog.Error("stat output file", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	io.Copy(w, outFile)

	slog.Info("export complete", "format", format, "size", stat.Size())
}

// renderFrames writes frame_0000.png onward into dir, advancing the yaw by
// an equal step each frame.
func (h *Handler) renderFrames(req *preview.Request, frames int, dir string) error {
	start := req.State.RotationY
	step := 2 * math.Pi / float64(frames)

	for i := range frames {
		req.State.RotationY = start + step*float64(i)

		out, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i)))
		if err != nil {
			return fmt.Errorf("create frame file: %w", err)
		}
		err = h.scenes.Render(out, req)
		out.Close()
		if err != nil {
			return fmt.Errorf("render frame %d: %w", i, err)
		}
	}
	return nil
}

func (h *Handler) runFfmpeg(r *http.Request, args ...string) error {
	// Prepend -y to overwrite output without prompting
	fullArgs := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(r.Context(), h.ffmpegPath, fullArgs...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, stderr.String())
	}
	return nil
}
