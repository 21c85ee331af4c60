// Package itemapi is the reference item service: the JSON API the inventory
// UI talks to, served from a store.Store.
package itemapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/InventoryUI/internal/core"
	"github.com/JonMunkholm/InventoryUI/internal/logging"
	"github.com/JonMunkholm/InventoryUI/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// MaxBodySize bounds JSON request bodies (20MB).
	MaxBodySize = 20 << 20
	// MaxBulkRows bounds one bulk import.
	MaxBulkRows = 10000
)

// Handler serves the item API.
type Handler struct {
	store store.Store
}

// New creates a handler over s.
func New(s store.Store) *Handler {
	return &Handler{store: s}
}

// Routes mounts the API on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/allItems", h.listAll)
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.listPage)
		r.Post("/", h.create)
		r.Post("/bulk-import", h.bulkImport)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	return r
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps err to a status and JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal error"}

	var verrs core.ValidationErrors
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		status = http.StatusBadRequest
		body = errorBody{Error: "validation failed", Fields: verrs}
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		body.Error = "item not found"
	case errors.Is(err, core.ErrInvalidID):
		status = http.StatusBadRequest
		body.Error = "invalid item id"
	case errors.As(err, &maxBytes):
		status = http.StatusRequestEntityTooLarge
		body.Error = "request body too large"
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		body.Error = err.Error()
	}

	log := logging.FromContext(r.Context())
	if status >= 500 {
		log.Error("item api error", "path", r.URL.Path, "error", err)
	} else {
		log.Debug("item api rejected request", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

var errBadRequest = errors.New("bad request")

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return errors.Join(errBadRequest, err)
	}
	return nil
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// queryInt returns a positive integer parameter or def.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func (h *Handler) listPage(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", defaultPageSize)
	if size > maxPageSize {
		size = maxPageSize
	}

	total, err := h.store.Count(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.store.Page(r.Context(), (page-1)*size, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.ItemPage{
		Items:      items,
		TotalItems: total,
		TotalPages: core.TotalPages(total, size),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	it, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var it core.Item
	if err := decodeBody(w, r, &it); err != nil {
		writeError(w, r, err)
		return
	}
	it.ID, it.CreatedAt = nil, nil
	if err := core.ValidateItem(it); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.store.Create(r.Context(), it)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("item created", "item_id", created.IDString())
	writeJSON(w, http.StatusCreated, created)
}

// update applies the non-null fields of the body and validates the result.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch core.Item
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	patch.ID, patch.CreatedAt = nil, nil

	cur, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := core.ValidateItem(store.Merge(*cur, patch)); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
