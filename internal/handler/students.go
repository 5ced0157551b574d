package handler

import (
	"net/http"
	"strconv"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, _, err := h.createStudent(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type studentProfileRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone"`
	School         *string  `json:"school"`
	Grade          *string  `json:"grade"`
	Attendance     *float64 `json:"attendance" validate:"omitempty,min=0,max=100"`
	TaskCompletion *float64 `json:"taskCompletion" validate:"omitempty,min=0,max=100"`
}

// handleUpdateStudent edits a profile. Students may edit only their own;
// attendance and task completion are staff-only.
func (h *Handler) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	who := caller(r)
	if who.Role == model.RoleStudent && who.SubjectID != id {
		writeError(w, r, model.ErrForbidden)
		return
	}

	var req studentProfileRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if who.Role == model.RoleStudent && (req.Attendance != nil || req.TaskCompletion != nil) {
		writeError(w, r, model.ErrForbidden)
		return
	}

	st, err := h.store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setIf(&st.Name, req.Name)
	setIf(&st.Email, req.Email)
	setIf(&st.Phone, req.Phone)
	setIf(&st.School, req.School)
	setIf(&st.Grade, req.Grade)
	setIf(&st.Attendance, req.Attendance)
	setIf(&st.TaskCompletion, req.TaskCompletion)
	err = h.store.InTx(r.Context(), func(tx *store.Store) error {
		if req.Email != nil {
			if err := tx.UpdateAccountEmail(r.Context(), st.ID, st.Email); err != nil {
				return err
			}
		}
		return tx.UpdateStudentProfile(r.Context(), st)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, err = h.store.Roster(r.Context(), func(g *roster.Graph) error {
		return g.DeleteStudent(id)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.refreshRanks(r.Context())
	writeMessage(w, http.StatusOK, appI18n.T(r.Context(), "Deleted"))
}

func (h *Handler) handleRecomputeRanks(w http.ResponseWriter, r *http.Request) {
	res, err := h.board.Recompute(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": appI18n.Tp(r.Context(), "StudentsRanked", res.Students),
		"result":  res,
	})
}

func (h *Handler) handleNationalBoard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, r, model.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	entries, err := h.board.National(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleBatchBoard(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "batchID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.board.Batch(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// setIf copies *src into dst when src is set.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
