package handler

import (
	"net/http"
	"time"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

type sessionView struct {
	model.Session
	Status model.SessionStatus `json:"status"`
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetBatch(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	sessions, err := h.store.ListSessionsByBatch(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	now := h.now()
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionView{Session: s, Status: s.Status(now)})
	}
	writeJSON(w, http.StatusOK, out)
}

type sessionRequest struct {
	BatchID string    `json:"batch" validate:"required,uuid"`
	Title   string    `json:"title" validate:"required"`
	Date    time.Time `json:"date" validate:"required"`
	Time    string    `json:"time" validate:"omitempty,datetime=15:04"`
	Notes   string    `json:"notes"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetBatch(r.Context(), req.BatchID); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.store.CreateSession(r.Context(), model.Session{
		BatchID: req.BatchID,
		Title:   req.Title,
		Date:    req.Date,
		Time:    req.Time,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView{Session: sess, Status: sess.Status(h.now())})
}

type sessionPatchRequest struct {
	Title *string    `json:"title" validate:"omitempty,min=1"`
	Date  *time.Time `json:"date"`
	Time  *string    `json:"time" validate:"omitempty,datetime=15:04"`
	Notes *string    `json:"notes"`
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req sessionPatchRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setIf(&sess.Title, req.Title)
	setIf(&sess.Date, req.Date)
	setIf(&sess.Time, req.Time)
	setIf(&sess.Notes, req.Notes)
	if err := h.store.UpdateSession(r.Context(), sess); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{Session: sess, Status: sess.Status(h.now())})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteSession(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, appI18n.T(r.Context(), "Deleted"))
}
