package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartscribe/heartscribe/ecg-go/annot"
)

func testApp(t *testing.T) (*App, *mux.Router, string) {
	dir, err := ioutil.TempDir("", "web-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	tmplDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(tmplDir, 0755))
	tmpl := "<html>{{range .Granularities}}{{.Name}} {{end}}</html>"
	require.NoError(t, ioutil.WriteFile(filepath.Join(tmplDir, "index.html"), []byte(tmpl), 0644))

	app := NewApp(dir, http.Dir(dir))
	r := mux.NewRouter()
	app.SetupRoutes(r)
	return app, r, dir
}

func whitePNG(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHandleIndex(t *testing.T) {
	_, r, _ := testApp(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fine")
	assert.Contains(t, rec.Body.String(), "coarse")
}

func TestHandleHealth(t *testing.T) {
	_, r, _ := testApp(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleParse(t *testing.T) {
	_, r, _ := testApp(t)

	body := `{"response":"Found it: <points x1=\"50\" x2=\"75\" x3=\"100\" alt=\"QRS\">QRS</points>","width":504}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Triplets, 1)
	assert.Equal(t, "QRS", resp.Triplets[0].Wave)
	assert.Equal(t, 200.0, resp.Triplets[0].StartMs)
	assert.Equal(t, 300.0, resp.Triplets[0].CenterMs)
	assert.Equal(t, 400.0, resp.Triplets[0].EndMs)
	assert.Equal(t, "fine", resp.Context.Granularity)
}

func TestHandleParse_EmptyResponse(t *testing.T) {
	_, r, _ := testApp(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse", strings.NewReader(`{"response":"no tags here"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Triplets)
}

func TestHandleParse_BadJSON(t *testing.T) {
	_, r, _ := testApp(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/api/parse", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func overlayRequest(t *testing.T, imgData []byte, response string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if imgData != nil {
		fw, err := mw.CreateFormFile("image", "ecg.png")
		require.NoError(t, err)
		_, err = fw.Write(imgData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("response", response))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/overlay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleOverlay(t *testing.T) {
	_, r, _ := testApp(t)

	req := overlayRequest(t, whitePNG(t, 504, 224),
		`<points x1="50" x2="75" x3="100" alt="QRS">QRS</points>`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 504, img.Bounds().Dx())

	// inside the band the white background is tinted, outside it is not
	inR, inG, inB, _ := img.At(75, 112).RGBA()
	assert.False(t, inR == inG && inG == inB, "band pixel should be tinted")
	outR, outG, outB, _ := img.At(400, 112).RGBA()
	assert.True(t, outR == outG && outG == outB, "pixel outside band should stay white")
}

func TestHandleOverlay_StoredImage(t *testing.T) {
	_, r, dir := testApp(t)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "1_i_0.png"), whitePNG(t, 252, 224), 0644))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "../1_i_0.png"))
	require.NoError(t, mw.WriteField("response", `<points x1="10" x2="20" x3="30" alt="P">P</points>`))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/overlay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleOverlay_NoCoordinates(t *testing.T) {
	_, r, _ := testApp(t)
	req := overlayRequest(t, whitePNG(t, 100, 100), "nothing here")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOverlay_UnknownKindSkipped(t *testing.T) {
	out, err := Overlay(whitePNG(t, 100, 100), []annot.Triplet{{X1: 10, X2: 20, X3: 30, Kind: "U"}})
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(20, 50).RGBA()
	assert.True(t, r == g && g == b)
}
