package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) GlobalRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.services.Rankings.Global(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, ranking)
}

func (h *Handler) WeeklyRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.services.Rankings.Weekly(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, ranking)
}

func (h *Handler) GroupRanking(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(groupID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group ID format")
		return
	}

	ranking, err := h.services.Rankings.Group(r.Context(), groupID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, ranking)
}
