package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/tasks"
)

// handleSubmit creates or replaces the caller's submission for a task.
// The form carries taskId, content and an optional file.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := caller(r).SubjectID

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, r, err)
		return
	}

	taskID := strings.TrimSpace(r.FormValue("taskId"))
	if !store.ValidID(taskID) {
		writeError(w, r, model.NewValidationError("taskId", "required"))
		return
	}
	content := strings.TrimSpace(r.FormValue("content"))

	task, err := h.store.GetTask(ctx, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	batch, err := h.store.GetBatch(ctx, task.BatchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !batch.HasStudent(studentID) {
		writeError(w, r, model.ErrForbidden)
		return
	}

	fileURL := ""
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		fileURL, err = h.files.Save(header.Filename, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeError(w, r, err)
		return
	}
	if content == "" && fileURL == "" {
		writeError(w, r, model.NewValidationError("content", "content or file required"))
		return
	}

	sub, previous, err := h.store.UpsertSubmission(ctx, model.Submission{
		StudentID: studentID,
		TaskID:    task.ID,
		BatchID:   task.BatchID,
		Content:   content,
		FileURL:   fileURL,
	}, tasks.CanResubmit)
	if err != nil {
		if fileURL != "" {
			_ = h.files.Delete(fileURL)
		}
		writeError(w, r, err)
		return
	}
	if previous != "" {
		if err := h.files.Delete(previous); err != nil {
			slog.Warn("failed to delete replaced attachment", "url", previous, "error", err)
		}
	}
	slog.Info("submission saved", "id", sub.ID, "task", sub.TaskID, "student", sub.StudentID)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "taskID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := h.store.ListSubmissionsByTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

type reviewRequest struct {
	Status   model.SubmissionStatus `json:"status" validate:"required,oneof=reviewed approved rejected resubmit"`
	Points   *int                   `json:"points" validate:"omitempty,min=0"`
	Feedback *string                `json:"feedback"`
}

// handleReview applies a mentor decision. The submission and the student's
// points change in one transaction; ranks are refreshed afterwards.
func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	decision := tasks.Decision{Status: req.Status, Points: req.Points, Feedback: req.Feedback}
	now := h.now()
	sub, delta, err := h.store.ApplyReview(r.Context(), id, func(sub *model.Submission) (int, error) {
		return tasks.Review(sub, decision, now)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if delta != 0 {
		slog.Info("points changed", "student", sub.StudentID, "delta", delta)
		h.refreshRanks(r.Context())
	}
	writeJSON(w, http.StatusOK, sub)
}
