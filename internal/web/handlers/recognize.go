package handlers

import (
	"context"
	"image"
	"image/jpeg"
	"log"
	"net/http"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/engine"
	"github.com/kozaktomas/facegate/internal/recognize"
	"github.com/kozaktomas/facegate/internal/web/middleware"
)

// Matcher is the corpus-search capability needed from the engine.
type Matcher interface {
	FindMatches(ctx context.Context, imagePath, corpusDir string, threshold float64) ([]engine.MatchRow, error)
}

// RecognizeHandler answers synchronous identity queries.
type RecognizeHandler struct {
	matcher       Matcher
	aggregator    *recognize.Aggregator
	productionDir string
	maxDim        int
}

// NewRecognizeHandler creates the recognition endpoint handler.
func NewRecognizeHandler(matcher Matcher, aggregator *recognize.Aggregator, productionDir string, maxDim int) *RecognizeHandler {
	return &RecognizeHandler{
		matcher:       matcher,
		aggregator:    aggregator,
		productionDir: productionDir,
		maxDim:        maxDim,
	}
}

// Recognize runs one query image against the caller's production corpus
// and returns the ranked identities. The query is downscaled before the
// engine call and the temporary file is always removed.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	domain := middleware.ClientDomain(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not decode image")
		return
	}
	resized := downscale(img, h.maxDim)

	tmp, err := os.CreateTemp("", "facegate-query-*.jpg")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not store query image")
		return
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, resized, &jpeg.Options{Quality: 90}); err != nil {
		tmp.Close()
		respondError(w, http.StatusInternalServerError, "could not store query image")
		return
	}
	if err := tmp.Close(); err != nil {
		respondError(w, http.StatusInternalServerError, "could not store query image")
		return
	}

	corpusDir := filepath.Join(h.productionDir, corpus.CleanDomain(domain))
	rows, err := h.matcher.FindMatches(r.Context(), tmp.Name(), corpusDir, h.aggregator.Threshold)
	if err != nil {
		log.Printf("recognize: corpus search failed for %s: %v", sanitizeForLog(domain), err)
		respondError(w, http.StatusBadGateway, "recognition engine unavailable")
		return
	}

	bounds := resized.Bounds()
	result := h.aggregator.Aggregate(rows, bounds.Dx(), bounds.Dy())
	respondJSON(w, http.StatusOK, result)
}

// downscale shrinks an image so its longest side is at most maxDim,
// keeping aspect ratio. Smaller images pass through untouched.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, xdraw.Src, nil)
	return scaled
}
