// Package web serves the demo UI: paste a model response, see the parsed
// wave coordinates, and overlay them on the source image.
package web

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/heartscribe/heartscribe/ecg-go/prompt"
	"github.com/heartscribe/heartscribe/ecg-go/segment"
	"github.com/heartscribe/heartscribe/ecg-go/vision"
	"github.com/heartscribe/heartscribe/ecg-golib/templateset"
)

const maxUploadBytes = 16 << 20

// App holds the handlers of the demo server.
type App struct {
	imageDir  string
	templates *templateset.Set
}

// NewApp returns an App serving images from imageDir and templates from the
// given filesystem.
func NewApp(imageDir string, staticfs http.FileSystem) *App {
	return &App{
		imageDir:  imageDir,
		templates: templateset.NewSet(staticfs, "templates", nil),
	}
}

// SetupRoutes registers the app's routes on the provided router.
func (a *App) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/", a.HandleIndex).Methods("GET")
	r.HandleFunc("/api/parse", a.HandleParse).Methods("POST")
	r.HandleFunc("/overlay", a.HandleOverlay).Methods("POST")
	r.HandleFunc("/health", a.HandleHealth).Methods("GET")
}

func (a *App) HandleIndex(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Granularities []segment.Granularity
	}{
		Granularities: []segment.Granularity{
			segment.UltraFine, segment.Fine, segment.Medium, segment.Coarse,
		},
	}
	if err := a.templates.Render(w, "index.html", payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type parseRequest struct {
	Response string `json:"response"`
	Width    int    `json:"width"`
}

type parsedTriplet struct {
	X1       int     `json:"x1"`
	X2       int     `json:"x2"`
	X3       int     `json:"x3"`
	Wave     string  `json:"wave"`
	StartMs  float64 `json:"start_ms"`
	CenterMs float64 `json:"center_ms"`
	EndMs    float64 `json:"end_ms"`
}

type parseResponse struct {
	Triplets []parsedTriplet `json:"triplets"`
	Context  vision.Context  `json:"context"`
}

// HandleParse extracts wave triplets from a raw model response and converts
// them to time offsets. Width defaults to the fine preset when absent.
func (a *App) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}
	if req.Width == 0 {
		req.Width = segment.Fine.Width
	}

	ctx := vision.EstimateContext(req.Width)
	resp := parseResponse{Triplets: []parsedTriplet{}, Context: ctx}
	for _, t := range prompt.ExtractPoints(req.Response) {
		resp.Triplets = append(resp.Triplets, parsedTriplet{
			X1:       t.X1,
			X2:       t.X2,
			X3:       t.X3,
			Wave:     string(t.Kind),
			StartMs:  float64(t.X1) * ctx.MsPerPixel,
			CenterMs: float64(t.X2) * ctx.MsPerPixel,
			EndMs:    float64(t.X3) * ctx.MsPerPixel,
		})
	}

	buf, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, fmt.Sprintf("error marshaling JSON: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf)
}

// HandleOverlay composites wave bands onto an ECG image. The image comes
// either as a multipart upload under "image" or as a stored image name under
// "name"; the model response rides in the "response" field.
func (a *App) HandleOverlay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("bad form: %v", err), http.StatusBadRequest)
		return
	}

	imgData, err := a.overlaySource(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	triplets := prompt.ExtractPoints(r.FormValue("response"))
	if len(triplets) == 0 {
		http.Error(w, "no wave coordinates found in response", http.StatusBadRequest)
		return
	}

	out, err := Overlay(imgData, triplets)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(out)
}

func (a *App) overlaySource(r *http.Request) ([]byte, error) {
	if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		return ioutil.ReadAll(file)
	}

	name := r.FormValue("name")
	if name == "" {
		return nil, fmt.Errorf("no image uploaded and no image name given")
	}
	// uploaded names never traverse out of the image folder
	path := filepath.Join(a.imageDir, filepath.Base(name))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stored image %s: %v", name, err)
	}
	return data, nil
}

func (a *App) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
