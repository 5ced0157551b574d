package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
)

// handleListBatches refreshes every batch's computed revenue before
// listing. ?teacher= narrows the list to one teacher's batches.
func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.store.RefreshBatchRevenues(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := []model.Batch{}
	teacher := r.URL.Query().Get("teacher")
	for _, b := range batches {
		if teacher == "" || b.Teacher == teacher {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type batchRequest struct {
	BatchName     string          `json:"batchName" validate:"required"`
	Teacher       string          `json:"teacher" validate:"omitempty,uuid"`
	Students      []string        `json:"students" validate:"omitempty,dive,uuid"`
	StartDate     time.Time       `json:"startDate" validate:"required"`
	EndDate       time.Time       `json:"endDate" validate:"required"`
	ScheduleDays  []string        `json:"scheduleDays"`
	SessionTime   string          `json:"sessionTime" validate:"omitempty,datetime=15:04"`
	TargetRevenue decimal.Decimal `json:"defaultRevenue"`
}

// handleCreateBatch creates a batch. A teacher creating a batch without
// naming a teacher owns it.
func (h *Handler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.EndDate.Before(req.StartDate) {
		writeError(w, r, model.NewValidationError("endDate", "must not be before startDate"))
		return
	}
	if req.TargetRevenue.IsNegative() {
		writeError(w, r, model.NewValidationError("defaultRevenue", "must not be negative"))
		return
	}
	if who := caller(r); req.Teacher == "" && who.Role == model.RoleTeacher {
		req.Teacher = who.SubjectID
	}

	var created model.Batch
	_, err := h.store.Roster(r.Context(), func(g *roster.Graph) error {
		var err error
		created, err = g.CreateBatch(model.Batch{
			BatchName:     req.BatchName,
			Teacher:       req.Teacher,
			Students:      req.Students,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			ScheduleDays:  req.ScheduleDays,
			SessionTime:   req.SessionTime,
			TargetRevenue: req.TargetRevenue,
		})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(created.Students) > 0 {
		h.refreshRanks(r.Context())
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.store.GetBatch(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Live figure only; the stored revenue column is refreshed by the list route.
	b.Revenue, err = h.store.ComputeBatchRevenue(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type batchPatchRequest struct {
	BatchName     *string          `json:"batchName" validate:"omitempty,min=1"`
	Teacher       *string          `json:"teacher"`
	Students      *[]string        `json:"students"`
	StartDate     *time.Time       `json:"startDate"`
	EndDate       *time.Time       `json:"endDate"`
	ScheduleDays  *[]string        `json:"scheduleDays"`
	SessionTime   *string          `json:"sessionTime" validate:"omitempty,datetime=15:04"`
	TargetRevenue *decimal.Decimal `json:"defaultRevenue"`
}

func (h *Handler) handleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req batchPatchRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TargetRevenue != nil && req.TargetRevenue.IsNegative() {
		writeError(w, r, model.NewValidationError("defaultRevenue", "must not be negative"))
		return
	}

	var updated model.Batch
	_, err = h.store.Roster(r.Context(), func(g *roster.Graph) error {
		var err error
		updated, err = g.UpdateBatch(id, roster.BatchPatch{
			BatchName:     req.BatchName,
			Teacher:       req.Teacher,
			Students:      req.Students,
			StartDate:     req.StartDate,
			EndDate:       req.EndDate,
			ScheduleDays:  req.ScheduleDays,
			SessionTime:   req.SessionTime,
			TargetRevenue: req.TargetRevenue,
		})
		if err != nil {
			return err
		}
		if updated.EndDate.Before(updated.StartDate) {
			return model.NewValidationError("endDate", "must not be before startDate")
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Students != nil {
		h.refreshRanks(r.Context())
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	urls, err := h.store.DeleteBatch(r.Context(), id)
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

type enrollRequest struct {
	StudentID string `json:"studentId" validate:"required,uuid"`
}

func (h *Handler) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req enrollRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var b model.Batch
	_, err = h.store.Roster(r.Context(), func(g *roster.Graph) error {
		var err error
		b, err = g.EnrollStudent(id, req.StudentID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.refreshRanks(r.Context())
	writeJSON(w, http.StatusOK, b)
}
