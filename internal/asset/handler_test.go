package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/pleat/internal/typeid"
)

func uploadRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="still.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/frames/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return encodePNG(t, img)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadStoresFrame(t *testing.T) {
	var gotID string
	h := NewHandler(t.TempDir(), func(id string, img image.Image) { gotID = id })

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", pngBytes(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NoError(t, typeid.Validate(resp.ID, typeid.PrefixFrame))
	assert.Equal(t, resp.ID, gotID)
	assert.Equal(t, 3, resp.Width)
	assert.Equal(t, 2, resp.Height)
	assert.Equal(t, "/frames/"+resp.ID+".png", resp.URL)

	img, err := h.Load(resp.ID)
	require.NoError(t, err)
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200), r>>8)

	srv := httptest.NewRecorder()
	h.Serve().ServeHTTP(srv, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	assert.Equal(t, http.StatusOK, srv.Code)
	assert.Contains(t, srv.Header().Get("Cache-Control"), "immutable")
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/gif", []byte("GIF89a")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSniffsContent(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "application/octet-stream", pngBytes(t)))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestUploadDownscalesLargeFrames(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	big := image.NewRGBA(image.Rect(0, 0, 2*maxFrameSide, 40))
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", encodePNG(t, big)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, maxFrameSide, resp.Width)
	assert.Equal(t, 20, resp.Height)
}

func TestUploadRejectsCorruptImage(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", []byte("not a png")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadUnknownFrame(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	_, err := h.Load(typeid.NewFrameID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.Load("../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}
