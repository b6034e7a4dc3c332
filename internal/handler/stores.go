package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/domain"
)

// StoresStore defines the database methods needed by store handlers.
type StoresStore interface {
	ListStores(ctx context.Context) ([]domain.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (domain.Store, error)
}

// StoresHandler handles store listing endpoints.
type StoresHandler struct {
	store StoresStore
}

// NewStoresHandler creates a new StoresHandler.
func NewStoresHandler(store StoresStore) *StoresHandler {
	return &StoresHandler{store: store}
}

// List returns every registered store.
func (h *StoresHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.store.ListStores(r.Context())
	if err != nil {
		log.Printf("ERROR: list stores: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

// Get returns a single store.
func (h *StoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	store, err := h.store.GetStore(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		log.Printf("ERROR: get store: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, store)
}
