package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	assetDir       = "assets"
	maxUploadBytes = 50 << 20 // 50 MB
)

// AssetHandler serves and accepts binary assets (note images, exported
// media) stored next to the data directory.
type AssetHandler struct {
	dataRoot string
}

// NewAssetHandler creates a handler rooted at the data directory.
func NewAssetHandler(dataRoot string) *AssetHandler {
	return &AssetHandler{dataRoot: dataRoot}
}

func (h *AssetHandler) assetPath() string {
	return filepath.Join(h.dataRoot, assetDir)
}

// safeName validates that the filename is a plain name (no path
// separators, no traversal) and returns the absolute path under the
// assets dir.
func (h *AssetHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.assetPath(), cleaned)
	if !strings.HasPrefix(abs, h.assetPath()+string(os.PathSeparator)) && abs != h.assetPath() {
		return "", fmt.Errorf("path escapes assets directory")
	}
	return abs, nil
}

// ServeFile handles GET /assets/{filename}.
func (h *AssetHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/assets (multipart/form-data, field "file").
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := os.MkdirAll(h.assetPath(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create assets dir"))
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"filename": header.Filename,
		"size":     written,
		"url":      "/assets/" + header.Filename,
	})
}
