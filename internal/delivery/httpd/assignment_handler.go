package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/robocoin/api/internal/models"
	"github.com/robocoin/api/pkg/validate"
)

// ListAssignments serves both roles: teachers see every assignment with
// its target groups, students see the assignments of their own group with
// their submission state folded in.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	identity := Actor(r.Context())

	if identity.Role == models.RoleStudent {
		assignments, err := h.services.Assignments.ListForStudent(r.Context(), identity.UserID)
		if err != nil {
			h.handleServiceError(w, err)
			return
		}
		writeSuccess(w, assignments)
		return
	}

	groupID := r.URL.Query().Get("group_id")
	if groupID != "" {
		if _, err := uuid.Parse(groupID); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid group_id format")
			return
		}
	}

	assignments, err := h.services.Assignments.ListForTeacher(r.Context(), groupID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignments)
}

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.services.Assignments.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	var req models.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.services.Assignments.Update(r.Context(), assignmentID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	if err := h.services.Assignments.Delete(r.Context(), assignmentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Assignment deleted successfully",
	})
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	submissions, err := h.services.Assignments.Submissions(r.Context(), assignmentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submissions)
}

func (h *Handler) StartAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	identity := Actor(r.Context())
	submission, err := h.services.Assignments.Start(r.Context(), assignmentID, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(assignmentID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	identity := Actor(r.Context())
	submission, err := h.services.Assignments.Complete(r.Context(), assignmentID, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, submission)
}

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(submissionID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid submission ID format")
		return
	}

	var req models.ReviewSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	identity := Actor(r.Context())
	response, err := h.services.Assignments.Review(r.Context(), submissionID, identity.UserID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}
