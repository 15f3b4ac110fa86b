package handlers

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegate/internal/admission"
	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/web/middleware"
)

const maxUploadBytes = 32 << 20

// UploadHandler accepts face images for asynchronous admission.
type UploadHandler struct {
	runner     *admission.Runner
	uploadsDir string
}

// NewUploadHandler creates the upload endpoint handler.
func NewUploadHandler(runner *admission.Runner, uploadsDir string) *UploadHandler {
	return &UploadHandler{runner: runner, uploadsDir: uploadsDir}
}

// Upload stores the incoming image in the domain's upload folder and
// launches admission in the background. The response only acknowledges
// receipt; the admission outcome is decided later.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	domain := middleware.ClientDomain(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	person := strings.TrimSpace(r.FormValue("person"))
	if person == "" {
		respondError(w, http.StatusBadRequest, "person is required")
		return
	}

	date := r.FormValue("created_date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "created_date must be YYYY-MM-DD")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !corpus.IsImageFile(header.Filename) {
		ext = ".jpg"
	}

	dir := filepath.Join(h.uploadsDir, corpus.CleanDomain(domain))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("upload: creating folder for %s: %v", sanitizeForLog(domain), err)
		respondError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	id := uuid.NewString()
	path := filepath.Join(dir, id+ext)
	dst, err := os.Create(path)
	if err != nil {
		log.Printf("upload: creating file for %s: %v", sanitizeForLog(domain), err)
		respondError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		log.Printf("upload: writing file for %s: %v", sanitizeForLog(domain), err)
		respondError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		respondError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	h.runner.Launch(admission.Request{
		ImagePath: path,
		Person:    person,
		Date:      date,
		Domain:    domain,
	})

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"id":     id,
	})
}
