package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

var errBadBody = errors.New("malformed request body")

type errorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeError maps err onto a status code and the common error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var (
		fieldErrs validator.ValidationErrors
		invalid   *model.ValidationError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &fieldErrs):
		fields := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			reason := fe.Tag()
			if fe.Param() != "" {
				reason += "=" + fe.Param()
			}
			fields[fe.Field()] = reason
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: appI18n.T(ctx, "ValidationFailed"), Fields: fields})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: appI18n.T(ctx, "ValidationFailed"), Fields: invalid.Fields})
	case errors.As(err, &tooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge,
			appI18n.Td(ctx, "FileTooLarge", map[string]any{"Limit": tooLarge.Limit >> 20}))
	case errors.Is(err, errBadBody):
		writeMessage(w, http.StatusBadRequest, appI18n.T(ctx, "InvalidBody"))
	case errors.Is(err, model.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, appI18n.T(ctx, "InvalidID"))
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeMessage(w, http.StatusForbidden, appI18n.T(ctx, "Forbidden"))
	case errors.Is(err, model.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// decode reads a JSON body into v and validates it.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return h.validate.Struct(v)
}

// urlID returns the named path parameter if it is a well-formed id.
func urlID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if !store.ValidID(id) {
		return "", fmt.Errorf("%q: %w", id, model.ErrInvalidID)
	}
	return id, nil
}
