package handlers

import (
	"net/http"

	"github.com/kozaktomas/facegate/internal/corpus"
)

// NamesHandler exposes the normalized-name mapping table.
type NamesHandler struct {
	names *corpus.NameStore
}

// NewNamesHandler creates the names endpoint handler.
func NewNamesHandler(names *corpus.NameStore) *NamesHandler {
	return &NamesHandler{names: names}
}

// List returns the full normalized -> display name table.
func (h *NamesHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"names": h.names.All()})
}
