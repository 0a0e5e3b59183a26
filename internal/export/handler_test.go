package export

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/pleat/internal/preview"
)

// fakeFfmpeg writes a script that stores the number of rendered frames in
// its last argument, standing in for a real encoder.
func fakeFfmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script encoder")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := `#!/bin/sh
for a; do last="$a"; done
ls "$(dirname "$last")" | grep -c '^frame_' > "$last"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newHandler(ffmpeg string) *Handler {
	return NewHandler(ffmpeg, preview.NewHandler(preview.Options{Background: gg.RGB(0, 0, 0)}, nil, nil))
}

func get(h *Handler, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ExportTurntable(rec, httptest.NewRequest(http.MethodGet, "/export/turntable?"+query, nil))
	return rec
}

func TestExportTurntable(t *testing.T) {
	h := newHandler(fakeFfmpeg(t))

	rec := get(h, "format=mp4&frames=8&w=64&h=48&slices=2&name=my%20turntable")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="my-turntable.mp4"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", strings.TrimSpace(rec.Body.String()))
}

func TestExportTurntableGIFDefaults(t *testing.T) {
	h := newHandler(fakeFfmpeg(t))

	rec := get(h, "w=32&h=32")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "36", strings.TrimSpace(rec.Body.String()))
}

func TestExportRejectsBadInput(t *testing.T) {
	h := newHandler("ffmpeg")

	assert.Equal(t, http.StatusBadRequest, get(h, "format=avi").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "format=gif&slices=lots").Code)
}

func TestExportEncoderFailure(t *testing.T) {
	h := newHandler(filepath.Join(t.TempDir(), "missing-ffmpeg"))

	rec := get(h, "format=webm&frames=2&w=16&h=16")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "encoding failed")
}
