package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/pkg/validate"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity := Actor(r.Context())

	profile, err := h.services.Profiles.Get(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := Actor(r.Context())
	user, err := h.services.Profiles.Update(r.Context(), identity.UserID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, user)
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	var req models.UploadAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := Actor(r.Context())
	response, err := h.services.Profiles.UploadAvatar(r.Context(), identity.UserID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
