package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/pkg/validate"
)

// GetShop returns the reward catalog. Students additionally get their
// balance and a can_afford flag per reward.
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request) {
	identity := Actor(r.Context())

	if identity.Role == models.RoleStudent {
		response, err := h.services.Shop.GetForStudent(r.Context(), identity.UserID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, response)
		return
	}

	response, err := h.services.Shop.GetForTeacher(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) UpdateShopSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateShopSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.services.Shop.UpdateSettings(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, settings)
}

func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reward, err := h.services.Shop.CreateReward(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, reward)
}

func (h *Handler) UpdateReward(w http.ResponseWriter, r *http.Request) {
	rewardID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(rewardID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reward ID format")
		return
	}

	var req models.CreateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reward, err := h.services.Shop.UpdateReward(r.Context(), rewardID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, reward)
}

func (h *Handler) DeleteReward(w http.ResponseWriter, r *http.Request) {
	rewardID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(rewardID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reward ID format")
		return
	}

	if err := h.services.Shop.DeleteReward(r.Context(), rewardID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Reward deleted successfully",
	})
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := Actor(r.Context())
	response, err := h.services.Shop.Redeem(r.Context(), identity.UserID, req.RewardID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
