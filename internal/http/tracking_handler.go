package http

import (
	"errors"
	"net/http"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/tracking"
)

// TrackingHandler serves the last-order attribution record the storefront
// reads once after a purchase.
type TrackingHandler struct {
	store tracking.Store
}

func NewTrackingHandler(store tracking.Store) *TrackingHandler {
	return &TrackingHandler{store: store}
}

func (h *TrackingHandler) LastOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	record, err := h.store.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, tracking.ErrNoRecord) {
			respondError(w, http.StatusNotFound, "not_found", "no tracking record")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load tracking record")
		return
	}

	respondJSON(w, http.StatusOK, record)
}
