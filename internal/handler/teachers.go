package handler

import (
	"net/http"
	"strings"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

func (h *Handler) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if teachers == nil {
		teachers = []model.Teacher{}
	}
	writeJSON(w, http.StatusOK, teachers)
}

type teacherRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone"`
	Expertise string `json:"expertise"`
}

func (h *Handler) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req teacherRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	var t model.Teacher
	err = h.store.InTx(ctx, func(tx *store.Store) error {
		var err error
		t, err = tx.CreateTeacher(ctx, model.Teacher{
			Name:      req.Name,
			Email:     strings.ToLower(req.Email),
			Phone:     req.Phone,
			Expertise: req.Expertise,
		})
		if err != nil {
			return err
		}
		_, err = tx.CreateAccount(ctx, model.Account{
			Email:        req.Email,
			PasswordHash: hash,
			Role:         model.RoleTeacher,
			SubjectID:    t.ID,
		})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.store.GetTeacher(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type teacherProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Expertise *string `json:"expertise"`
}

func (h *Handler) handleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req teacherProfileRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.store.GetTeacher(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setIf(&t.Name, req.Name)
	setIf(&t.Email, req.Email)
	setIf(&t.Phone, req.Phone)
	setIf(&t.Expertise, req.Expertise)
	err = h.store.InTx(r.Context(), func(tx *store.Store) error {
		if req.Email != nil {
			if err := tx.UpdateAccountEmail(r.Context(), t.ID, t.Email); err != nil {
				return err
			}
		}
		return tx.UpdateTeacherProfile(r.Context(), t)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, err = h.store.Roster(r.Context(), func(g *roster.Graph) error {
		return g.DeleteTeacher(id)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, appI18n.T(r.Context(), "Deleted"))
}
