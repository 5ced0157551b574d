package handler

import (
	"net/http"

	appI18n "github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/i18n"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
)

// handleTeacherEarnings serves a teacher's report to admins and to that
// teacher.
func (h *Handler) handleTeacherEarnings(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "teacherID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if who := caller(r); who.Role == model.RoleTeacher && who.SubjectID != id {
		writeError(w, r, model.ErrForbidden)
		return
	}
	report, err := h.earnings.Teacher(r.Context(), id, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handlePlatformEarnings(w http.ResponseWriter, r *http.Request) {
	timeRange := r.URL.Query().Get("timeRange")
	if timeRange == "" {
		timeRange = revenue.Range30Days
	}
	if !revenue.ValidRange(timeRange) {
		writeError(w, r, model.NewValidationError("timeRange",
			appI18n.Td(r.Context(), "InvalidTimeRange", map[string]any{"Range": timeRange})))
		return
	}
	report, err := h.earnings.Platform(r.Context(), timeRange, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
