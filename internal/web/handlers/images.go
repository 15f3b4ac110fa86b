package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/facegate/internal/corpus"
	"github.com/kozaktomas/facegate/internal/web/middleware"
)

// ImagesHandler manages the production corpus of a domain.
type ImagesHandler struct {
	productionDir string
	names         *corpus.NameStore
}

// NewImagesHandler creates the corpus management handler.
func NewImagesHandler(productionDir string, names *corpus.NameStore) *ImagesHandler {
	return &ImagesHandler{productionDir: productionDir, names: names}
}

// imageEntry is one corpus image in a listing response.
type imageEntry struct {
	Filename    string              `json:"filename"`
	Person      string              `json:"person"`
	DisplayName string              `json:"display_name"`
	Date        string              `json:"date"`
	Coordinates *corpus.Coordinates `json:"coordinates,omitempty"`
}

func (h *ImagesHandler) domainDir(r *http.Request) string {
	return filepath.Join(h.productionDir, corpus.CleanDomain(middleware.ClientDomain(r.Context())))
}

// safeFilename rejects path traversal in a filename URL parameter.
func safeFilename(raw string) (string, bool) {
	if raw == "" || raw != filepath.Base(raw) || strings.HasPrefix(raw, ".") {
		return "", false
	}
	return raw, true
}

// List returns the domain's production images, optionally filtered by
// person.
func (h *ImagesHandler) List(w http.ResponseWriter, r *http.Request) {
	person := corpus.SanitizePerson(r.URL.Query().Get("person"))

	entries, err := os.ReadDir(h.domainDir(r))
	if err != nil && !os.IsNotExist(err) {
		log.Printf("images: listing %s: %v", h.domainDir(r), err)
		respondError(w, http.StatusInternalServerError, "could not list images")
		return
	}

	images := make([]imageEntry, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !corpus.IsImageFile(name) {
			continue
		}
		owner, date, _ := corpus.ParseFilename(name)
		if person != "" && owner != person {
			continue
		}

		item := imageEntry{
			Filename:    name,
			Person:      owner,
			DisplayName: h.names.DisplayName(owner),
			Date:        date,
		}
		if sc, err := corpus.ReadSidecar(filepath.Join(h.domainDir(r), name)); err == nil {
			item.Coordinates = &sc.Coordinates
		}
		images = append(images, item)
	}
	respondJSON(w, http.StatusOK, map[string]any{"images": images})
}

// Delete removes one production image and its sidecar.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename, ok := safeFilename(chi.URLParam(r, "filename"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	path := filepath.Join(h.domainDir(r), filename)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "image not found")
			return
		}
		log.Printf("images: deleting %s: %v", path, err)
		respondError(w, http.StatusInternalServerError, "could not delete image")
		return
	}
	os.Remove(corpus.SidecarPath(path))

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Rename reassigns one production image to a different person, keeping
// the date and timestamp part of the filename intact.
func (h *ImagesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	filename, ok := safeFilename(chi.URLParam(r, "filename"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	var body struct {
		Person string `json:"person"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Person) == "" {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	oldPerson, date, parsed := corpus.ParseFilename(filename)
	if !parsed {
		respondError(w, http.StatusBadRequest, "filename does not follow the corpus scheme")
		return
	}

	normalized, err := h.names.Record(body.Person)
	if err != nil {
		log.Printf("images: recording name mapping: %v", err)
		respondError(w, http.StatusInternalServerError, "could not record name")
		return
	}

	// Keep everything after the person prefix: {date}_{millis}.jpg.
	suffix := strings.TrimPrefix(filename, oldPerson+"_")
	newName := corpus.SanitizePerson(normalized) + "_" + suffix

	oldPath := filepath.Join(h.domainDir(r), filename)
	newPath := filepath.Join(h.domainDir(r), newName)
	if _, err := os.Stat(newPath); err == nil {
		// The target person already owns an image with this timestamp;
		// mint a fresh one instead of overwriting.
		newName = corpus.BuildFilename(normalized, date, time.Now().UnixMilli())
		newPath = filepath.Join(h.domainDir(r), newName)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "image not found")
			return
		}
		log.Printf("images: renaming %s: %v", oldPath, err)
		respondError(w, http.StatusInternalServerError, "could not rename image")
		return
	}

	if sc, err := corpus.ReadSidecar(oldPath); err == nil {
		sc.Person = normalized
		sc.DisplayName = h.names.DisplayName(normalized)
		if err := corpus.WriteSidecar(newPath, *sc); err == nil {
			os.Remove(corpus.SidecarPath(oldPath))
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"filename": newName,
		"person":   normalized,
		"date":     date,
	})
}
