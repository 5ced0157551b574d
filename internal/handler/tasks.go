package handler

import (
	"log/slog"
	"net/http"
	"time"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/tasks"
)

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetBatch(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.store.ListTasksByBatches(r.Context(), []string{id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Task{}
	}
	writeJSON(w, http.StatusOK, list)
}

type myTask struct {
	model.Task
	EffectiveStatus tasks.Status      `json:"effectiveStatus"`
	Submission      *model.Submission `json:"submission,omitempty"`
}

// handleMyTasks lists the tasks of every batch the student is in, each
// with the student's effective status.
func (h *Handler) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := caller(r).SubjectID

	batches, err := h.store.ListBatchesByStudent(ctx, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ids := make([]string, 0, len(batches))
	for _, b := range batches {
		ids = append(ids, b.ID)
	}
	list, err := h.store.ListTasksByBatches(ctx, ids)
	if err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := h.store.ListSubmissionsByStudent(ctx, studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	byTask := make(map[string]*model.Submission, len(subs))
	for i := range subs {
		byTask[subs[i].TaskID] = &subs[i]
	}

	now := h.now()
	out := make([]myTask, 0, len(list))
	for _, t := range list {
		sub := byTask[t.ID]
		out = append(out, myTask{Task: t, EffectiveStatus: tasks.Effective(t, sub, now), Submission: sub})
	}
	writeJSON(w, http.StatusOK, out)
}

type taskRequest struct {
	BatchID     string    `json:"batch" validate:"required,uuid"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetBatch(r.Context(), req.BatchID); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.store.CreateTask(r.Context(), model.Task{
		BatchID:     req.BatchID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type taskPatchRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1"`
	Description *string           `json:"description"`
	DueDate     *time.Time        `json:"dueDate"`
	Status      *model.TaskStatus `json:"status" validate:"omitempty,oneof=pending completed"`
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req taskPatchRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setIf(&t.Title, req.Title)
	setIf(&t.Description, req.Description)
	setIf(&t.DueDate, req.DueDate)
	setIf(&t.Status, req.Status)
	if err := h.store.UpdateTask(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTask removes a task with its submissions and their files.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	urls, err := h.store.DeleteTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, u := range urls {
		if err := h.files.Delete(u); err != nil {
			slog.Warn("failed to delete attachment", "url", u, "error", err)
		}
	}
	h.refreshRanks(r.Context())
	writeMessage(w, http.StatusOK, appI18n.T(r.Context(), "Deleted"))
}
