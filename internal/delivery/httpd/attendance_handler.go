package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/pkg/validate"
)

func (h *Handler) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req models.SaveAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := Actor(r.Context())
	response, err := h.services.Attendance.Save(r.Context(), identity.UserID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if _, err := uuid.Parse(groupID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group_id format")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	records, err := h.services.Attendance.ListByGroupDate(r.Context(), groupID, date)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, records)
}

func (h *Handler) AttendanceStats(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if _, err := uuid.Parse(groupID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group_id format")
		return
	}

	stats, err := h.services.Attendance.Stats(r.Context(), groupID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, stats)
}
