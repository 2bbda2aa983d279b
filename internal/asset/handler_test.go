package asset

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/session"
)

func setup(t *testing.T) *mux.Router {
	t.Helper()
	opts := editor.DefaultOptions()
	opts.Width, opts.Height = 40, 40
	hub := session.NewHub(opts)
	t.Cleanup(hub.Stop)

	h := NewHandler(hub)
	r := mux.NewRouter()
	r.HandleFunc("/drawings/{drawingId}/image", h.Upload).Methods("POST")
	r.HandleFunc("/drawings/{drawingId}/image", h.Download).Methods("GET")
	return r
}

func upload(t *testing.T, contentType string, img image.Image) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="in.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/drawings/draw_a/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadThenDownload(t *testing.T) {
	r := setup(t)
	green := color.NRGBA{G: 255, A: 255}
	src := imaging.New(12, 8, green)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, upload(t, "image/png", src))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"width":12`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/drawings/draw_a/image", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), out.Bounds())
	assert.Equal(t, green, color.NRGBAModel.Convert(out.At(3, 3)))
}

func TestUploadRejectsOtherTypes(t *testing.T) {
	r := setup(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, upload(t, "image/gif", imaging.New(2, 2, color.White)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadUnknownDrawing(t *testing.T) {
	r := setup(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/drawings/draw_missing/image", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
