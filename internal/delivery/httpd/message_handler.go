package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/pkg/validate"
)

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := Actor(r.Context())
	message, err := h.services.Messages.Send(r.Context(), identity.UserID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, message)
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	otherID := chi.URLParam(r, "userId")
	if _, err := uuid.Parse(otherID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	identity := Actor(r.Context())
	messages, err := h.services.Messages.Thread(r.Context(), identity.UserID, otherID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, messages)
}
