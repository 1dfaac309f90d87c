package httpd

import (
	"net/http"

	"github.com/google/uuid"
)

// ExportAttendanceCSV streams a group's attendance sheet. The column
// names and the davomat.csv filename mirror what the classroom staff
// already imports into their spreadsheets.
func (h *Handler) ExportAttendanceCSV(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if _, err := uuid.Parse(groupID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid group_id format")
		return
	}

	data, err := h.services.Exports.AttendanceCSV(r.Context(), groupID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="davomat.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) ExportTransactionsXLSX(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	if groupID != "" {
		if _, err := uuid.Parse(groupID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid group_id format")
			return
		}
	}

	data, err := h.services.Exports.TransactionsXLSX(r.Context(), groupID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
