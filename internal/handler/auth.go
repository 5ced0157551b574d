package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

// requireAuth is middleware that checks for a valid bearer token.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeMessage(w, http.StatusUnauthorized, appI18n.T(r.Context(), "Unauthorized"))
			return
		}
		id, err := h.issuer.Parse(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, appI18n.T(r.Context(), "Unauthorized"))
			return
		}
		ctx := model.ContextWithIdentity(r.Context(), &id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the caller has one of the allowed roles.
func requireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.IdentityFromContext(r.Context())
			if id == nil {
				writeMessage(w, http.StatusUnauthorized, appI18n.T(r.Context(), "Unauthorized"))
				return
			}
			if !slices.Contains(allowed, id.Role) {
				writeMessage(w, http.StatusForbidden, appI18n.T(r.Context(), "Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// caller returns the authenticated identity. Routes behind requireAuth
// always have one.
func caller(r *http.Request) model.Identity {
	if id := model.IdentityFromContext(r.Context()); id != nil {
		return *id
	}
	return model.Identity{}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Role      model.Role `json:"role"`
	SubjectID string     `json:"subjectId"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	acct, err := h.store.GetAccountByEmail(r.Context(), req.Email)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !auth.CheckPassword(acct.PasswordHash, req.Password)) {
		writeMessage(w, http.StatusUnauthorized, appI18n.T(r.Context(), "InvalidCredentials"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeToken(w, r, http.StatusOK, acct)
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, status int, acct model.Account) {
	token, exp, err := h.issuer.Issue(acct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, tokenResponse{Token: token, ExpiresAt: exp, Role: acct.Role, SubjectID: acct.SubjectID})
}

type studentRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	School   string `json:"school"`
	Grade    string `json:"grade"`
}

// createStudent inserts a student and its login account together.
func (h *Handler) createStudent(ctx context.Context, req studentRequest) (model.Student, model.Account, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return model.Student{}, model.Account{}, err
	}
	var (
		st   model.Student
		acct model.Account
	)
	err = h.store.InTx(ctx, func(tx *store.Store) error {
		var err error
		st, err = tx.CreateStudent(ctx, model.Student{
			Name:   req.Name,
			Email:  strings.ToLower(req.Email),
			Phone:  req.Phone,
			School: req.School,
			Grade:  req.Grade,
		})
		if err != nil {
			return err
		}
		acct, err = tx.CreateAccount(ctx, model.Account{
			Email:        req.Email,
			PasswordHash: hash,
			Role:         model.RoleStudent,
			SubjectID:    st.ID,
		})
		return err
	})
	if err != nil {
		return model.Student{}, model.Account{}, err
	}
	h.refreshRanks(ctx)
	return st, acct, nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	_, acct, err := h.createStudent(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeToken(w, r, http.StatusCreated, acct)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	var (
		profile any
		err     error
	)
	switch id.Role {
	case model.RoleStudent:
		profile, err = h.store.GetStudent(r.Context(), id.SubjectID)
	case model.RoleTeacher:
		profile, err = h.store.GetTeacher(r.Context(), id.SubjectID)
	case model.RoleAdmin:
		profile, err = h.store.GetAdmin(r.Context(), id.SubjectID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"identity": id, "profile": profile})
}
