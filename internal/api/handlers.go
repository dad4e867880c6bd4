package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opdeck/opdeck/internal/apperr"
	"github.com/opdeck/opdeck/internal/backup"
	"github.com/opdeck/opdeck/internal/checksum"
	"github.com/opdeck/opdeck/internal/dashboard"
	"github.com/opdeck/opdeck/internal/index"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/modules"
	"github.com/opdeck/opdeck/internal/settings"
	"github.com/opdeck/opdeck/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	store    *storage.Store
	registry *modules.Registry
	agg      *dashboard.Aggregator
	backup   *backup.Service
	settings *settings.Service
	idx      index.NoteIndex
}

// NewHandler creates a new Handler. idx may be nil when the search index
// is disabled.
func NewHandler(store *storage.Store, registry *modules.Registry, agg *dashboard.Aggregator, bk *backup.Service, st *settings.Service, idx index.NoteIndex) *Handler {
	return &Handler{store: store, registry: registry, agg: agg, backup: bk, settings: st, idx: idx}
}

func collectionKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "collection")
	if !models.KnownCollection(key) {
		writeJSON(w, http.StatusNotFound, errorBody("unknown collection"))
		return "", false
	}
	return key, true
}

// GetCollection handles GET /api/collections/{collection}. The response
// carries an ETag over the stored bytes so clients can detect stale
// writes with If-Match on the next PUT.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	key, ok := collectionKey(w, r)
	if !ok {
		return
	}
	if raw, err := h.store.Raw(key); err == nil {
		w.Header().Set("ETag", `"`+checksum.Sum(raw)+`"`)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"collection": key,
		"records":    h.store.Get(key),
	})
}

// PutCollection handles PUT /api/collections/{collection}: wholesale
// replacement of the stored array. An If-Match header makes the write
// conditional on the collection not having changed since it was read;
// without it the write is last-writer-wins.
func (h *Handler) PutCollection(w http.ResponseWriter, r *http.Request) {
	key, ok := collectionKey(w, r)
	if !ok {
		return
	}
	var records []json.RawMessage
	if !decodeBody(w, r, &records) {
		return
	}

	if ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`); ifMatch != "" {
		current := ""
		if raw, err := h.store.Raw(key); err == nil {
			current = checksum.Sum(raw)
		}
		if current != ifMatch {
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
			return
		}
	}

	err := h.store.Save(key, records)
	h.registry.Reload(key)
	writeMutation(w, http.StatusOK, map[string]any{"collection": key, "count": len(records)}, err)
}

// PostRecord handles POST /api/collections/{collection}: append one raw
// record.
func (h *Handler) PostRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := collectionKey(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	saveErr := h.store.Add(key, body)
	h.registry.Reload(key)
	writeMutation(w, http.StatusCreated, map[string]any{"collection": key}, saveErr)
}

// PatchRecord handles PATCH /api/collections/{collection}/{id}: shallow
// field merge. A missing id is a no-op and still reports success.
func (h *Handler) PatchRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := collectionKey(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var fields map[string]any
	if !decodeBody(w, r, &fields) {
		return
	}
	err := h.store.Patch(key, id, fields)
	h.registry.Reload(key)
	writeMutation(w, http.StatusOK, map[string]any{"collection": key, "id": id}, err)
}

// DeleteRecord handles DELETE /api/collections/{collection}/{id}.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	key, ok := collectionKey(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.Remove(key, id); err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	h.registry.Reload(key)
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/summary. The rollup is recomputed from
// durable storage on every call.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agg.Summary())
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index disabled"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index disabled"))
		return
	}
	nodes, links, err := h.idx.Graph()
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes, "links": links})
}

// Backlinks handles GET /api/backlinks/{id}.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	if h.idx == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	sources, err := h.idx.Backlinks(id)
	if err != nil {
		slog.Error("backlinks failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "backlinks": sources})
}

// Export handles GET /api/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	archive, err := h.backup.ExportAll()
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="opdeck-export.json"`)
	writeJSON(w, http.StatusOK, archive)
}

// Import handles POST /api/import.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if err := h.backup.ImportAll(body); err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnsupportedVersion):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("unsupported archive version"))
		case errors.Is(err, apperr.ErrQuotaExceeded):
			writeJSON(w, http.StatusInsufficientStorage, errorBody("storage quota exceeded"))
		default:
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		}
		return
	}
	for _, key := range models.CollectionKeys() {
		h.registry.Reload(key)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearData handles DELETE /api/data: wipe every collection and settings.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.backup.ClearAll(); err != nil {
		slog.Error("clear failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	for _, key := range models.CollectionKeys() {
		h.registry.Reload(key)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Usage handles GET /api/usage.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.backup.UsageStats()
	if err != nil {
		slog.Error("usage failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.All())
}

// PatchSettings handles PATCH /api/settings: shallow merge of recognized
// keys over stored settings.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if !decodeBody(w, r, &updates) {
		return
	}
	err := h.settings.Update(updates)
	writeMutation(w, http.StatusOK, h.settings.All(), err)
}
