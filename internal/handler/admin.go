package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

// handleListAccounts lists login accounts, optionally filtered by ?role=.
func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		writeError(w, r, model.NewValidationError("role", "must be student, teacher or admin"))
		return
	}
	accounts, err := h.store.ListAccounts(r.Context(), role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

type adminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := CreateAdmin(r.Context(), h.store, req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// CreateAdmin inserts an admin profile and its login account together.
func CreateAdmin(ctx context.Context, s *store.Store, name, email, password string) (model.Admin, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.Admin{}, err
	}
	var a model.Admin
	err = s.InTx(ctx, func(tx *store.Store) error {
		var err error
		a, err = tx.CreateAdmin(ctx, model.Admin{Name: name, Email: strings.ToLower(email)})
		if err != nil {
			return err
		}
		_, err = tx.CreateAccount(ctx, model.Account{
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			SubjectID:    a.ID,
		})
		return err
	})
	return a, err
}
