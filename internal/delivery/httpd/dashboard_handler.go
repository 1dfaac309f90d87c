package httpd

import (
	"net/http"
)

func (h *Handler) TeacherDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.services.Dashboards.Teacher(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, dashboard)
}

func (h *Handler) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	identity := Actor(r.Context())

	dashboard, err := h.services.Dashboards.Student(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, dashboard)
}

// MyTransactions is the student's own ledger history, newest first.
func (h *Handler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	identity := Actor(r.Context())

	transactions, err := h.services.Ledger.ListByStudent(r.Context(), identity.UserID, 50)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, transactions)
}
