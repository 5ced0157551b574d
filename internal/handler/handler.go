// Package handler exposes the bootcamp JSON API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/auth"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/earnings"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/files"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/leaderboard"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/store"
)

// Config holds request limits.
type Config struct {
	MaxUploadBytes int64
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	earnings *earnings.Service
	board    *leaderboard.Service
	files    *files.Store
	issuer   *auth.Issuer
	validate *validator.Validate
	config   Config
	now      func() time.Time
}

// New creates a new Handler.
func New(s *store.Store, e *earnings.Service, b *leaderboard.Service, f *files.Store, iss *auth.Issuer, cfg Config) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Handler{
		store:    s,
		earnings: e,
		board:    b,
		files:    f,
		issuer:   iss,
		validate: v,
		config:   cfg,
		now:      time.Now,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.With(h.requireAuth).Handle("/uploads/*", http.StripPrefix("/uploads", h.files.Handler()))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/register", h.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			h.authedRoutes(r)
		})
	})
}

func (h *Handler) authedRoutes(r chi.Router) {
	staff := requireRole(model.RoleAdmin, model.RoleTeacher)
	admin := requireRole(model.RoleAdmin)
	student := requireRole(model.RoleStudent)

	r.Get("/auth/me", h.handleMe)

	r.Route("/students", func(r chi.Router) {
		r.With(staff).Get("/", h.handleListStudents)
		r.With(admin).Post("/", h.handleCreateStudent)
		r.With(staff).Get("/leaderboard/calculate", h.handleRecomputeRanks)
		r.Get("/leaderboard/national", h.handleNationalBoard)
		r.Get("/leaderboard/batch/{batchID}", h.handleBatchBoard)
		r.Get("/{id}", h.handleGetStudent)
		r.Put("/{id}", h.handleUpdateStudent)
		r.With(admin).Delete("/{id}", h.handleDeleteStudent)
	})

	r.Route("/teachers", func(r chi.Router) {
		r.Get("/", h.handleListTeachers)
		r.With(admin).Post("/", h.handleCreateTeacher)
		r.Get("/{id}", h.handleGetTeacher)
		r.With(admin).Put("/{id}", h.handleUpdateTeacher)
		r.With(admin).Delete("/{id}", h.handleDeleteTeacher)
	})

	r.Route("/batches", func(r chi.Router) {
		r.With(staff).Get("/", h.handleListBatches)
		r.With(staff).Post("/", h.handleCreateBatch)
		r.Get("/{id}", h.handleGetBatch)
		r.With(staff).Put("/{id}", h.handleUpdateBatch)
		r.With(staff).Delete("/{id}", h.handleDeleteBatch)
		r.With(staff).Post("/{id}/students", h.handleEnrollStudent)
		r.Get("/{id}/sessions", h.handleListSessions)
		r.Get("/{id}/tasks", h.handleListTasks)
		r.With(student).Post("/{id}/reviews", h.handleCreateBatchReview)
		r.Get("/{id}/reviews", h.handleListBatchReviews)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Use(staff)
		r.Post("/", h.handleCreateSession)
		r.Put("/{id}", h.handleUpdateSession)
		r.Delete("/{id}", h.handleDeleteSession)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.With(student).Get("/mine", h.handleMyTasks)
		r.With(staff).Post("/", h.handleCreateTask)
		r.With(staff).Put("/{id}", h.handleUpdateTask)
		r.With(staff).Delete("/{id}", h.handleDeleteTask)
	})

	r.Route("/taskSubmission", func(r chi.Router) {
		r.With(student).Post("/submit", h.handleSubmit)
		r.With(staff).Get("/task/{taskID}", h.handleListSubmissions)
		r.With(staff).Put("/{id}", h.handleReview)
	})

	r.Route("/sales", func(r chi.Router) {
		r.With(student).Post("/", h.handleCreateSale)
		r.With(student).Get("/mine", h.handleMySales)
		r.With(student).Get("/stats", h.handleSalesStats)
		r.With(admin).Put("/{id}", h.handleUpdateSale)
	})

	r.With(staff).Get("/earnings/teacher/{teacherID}", h.handleTeacherEarnings)

	r.Route("/feedback", func(r chi.Router) {
		r.With(student).Post("/", h.handleCreateFeedback)
		r.With(admin).Get("/", h.handleListFeedback)
		r.With(student).Get("/mine", h.handleMyFeedback)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin)
		r.Get("/earnings", h.handlePlatformEarnings)
		r.Get("/accounts", h.handleListAccounts)
		r.Post("/admins", h.handleCreateAdmin)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// refreshRanks recomputes the leaderboards after a committed write that
// changed points or batch membership. Failures are logged; the write has
// already succeeded.
func (h *Handler) refreshRanks(ctx context.Context) {
	if _, err := h.board.Recompute(ctx); err != nil {
		slog.Error("rank recompute failed", "error", err)
	}
}
