package handler

import (
	"net/http"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

type feedbackRequest struct {
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

func (h *Handler) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.store.CreateFeedback(r.Context(), model.Feedback{
		StudentID: caller(r).SubjectID,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	h.listFeedback(w, r, "")
}

func (h *Handler) handleMyFeedback(w http.ResponseWriter, r *http.Request) {
	h.listFeedback(w, r, caller(r).SubjectID)
}

func (h *Handler) listFeedback(w http.ResponseWriter, r *http.Request, studentID string) {
	list, err := h.store.ListFeedback(r.Context(), studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Feedback{}
	}
	writeJSON(w, http.StatusOK, list)
}

type batchReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// handleCreateBatchReview lets an enrolled student rate a batch.
func (h *Handler) handleCreateBatchReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req batchReviewRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	studentID := caller(r).SubjectID
	b, err := h.store.GetBatch(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !b.HasStudent(studentID) {
		writeError(w, r, model.ErrForbidden)
		return
	}
	review, err := h.store.CreateBatchReview(r.Context(), model.BatchReview{
		StudentID: studentID,
		BatchID:   id,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleListBatchReviews(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetBatch(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.store.ListBatchReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.BatchReview{}
	}
	writeJSON(w, http.StatusOK, list)
}
