// Package leaderboard ranks students by points nationally and within
// each batch.
//
// Ranks are a total order: points descending, ties broken by student id
// ascending. Recompute rewrites every rank from scratch and is safe to
// call as often as needed.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// NationalLimit caps the national board.
const NationalLimit = 100

// Store is the persistence the ranker needs.
type Store interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	ListStudentsByIDs(ctx context.Context, ids []string) ([]model.Student, error)
	TopStudents(ctx context.Context, limit int) ([]model.Student, error)
	ListBatches(ctx context.Context) ([]model.Batch, error)
	GetBatch(ctx context.Context, id string) (model.Batch, error)
	SaveRanks(ctx context.Context, national, batch map[string]int, at time.Time) error
}

// Entry is the leaderboard projection of a student.
type Entry struct {
	Rank         int    `json:"rank"`
	ID           string `json:"id"`
	Name         string `json:"name"`
	School       string `json:"school"`
	Grade        string `json:"grade"`
	Points       int    `json:"points"`
	NationalRank int    `json:"nationalRank"`
	BatchRank    int    `json:"batchRank"`
}

// Result summarizes a recompute.
type Result struct {
	Students int       `json:"students"`
	Batches  int       `json:"batches"`
	At       time.Time `json:"recomputedAt"`
}

// Sort orders students in rank order in place.
func Sort(students []model.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Points != students[j].Points {
			return students[i].Points > students[j].Points
		}
		return students[i].ID < students[j].ID
	})
}

// Ranks returns the 1-based rank of every student keyed by id.
func Ranks(students []model.Student) map[string]int {
	sorted := make([]model.Student, len(students))
	copy(sorted, students)
	Sort(sorted)
	ranks := make(map[string]int, len(sorted))
	for i, st := range sorted {
		ranks[st.ID] = i + 1
	}
	return ranks
}

// Service computes and serves leaderboards.
type Service struct {
	store Store
	cache Cache
	now   func() time.Time
}

// New returns a Service. A nil cache disables caching.
func New(store Store, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: store, cache: cache, now: time.Now}
}

// Recompute assigns national and batch ranks to every student and
// persists them in one write. A student in several batches keeps the rank
// from the last batch in id order, since batchRank is a single field.
func (s *Service) Recompute(ctx context.Context) (Result, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list students: %w", err)
	}
	batches, err := s.store.ListBatches(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list batches: %w", err)
	}

	national := Ranks(students)
	byID := make(map[string]model.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	sort.Slice(batches, func(i, j int) bool { return batches[i].ID < batches[j].ID })
	batchRanks := make(map[string]int, len(students))
	for _, b := range batches {
		var members []model.Student
		for _, id := range b.Students {
			if st, ok := byID[id]; ok {
				members = append(members, st)
			}
		}
		for id, rank := range Ranks(members) {
			batchRanks[id] = rank
		}
	}

	at := s.now()
	if err := s.store.SaveRanks(ctx, national, batchRanks, at); err != nil {
		return Result{}, fmt.Errorf("save ranks: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate leaderboard cache", "error", err)
	}
	slog.Info("recomputed leaderboard", "students", len(students), "batches", len(batches))
	return Result{Students: len(students), Batches: len(batches), At: at}, nil
}

// National returns the top students, at most NationalLimit.
func (s *Service) National(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > NationalLimit {
		limit = NationalLimit
	}
	key := fmt.Sprintf("national:%d", limit)
	if entries, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("leaderboard cache read failed", "key", key, "error", err)
	} else if ok {
		return entries, nil
	}

	students, err := s.store.TopStudents(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := project(students)
	if err := s.cache.Set(ctx, key, entries); err != nil {
		slog.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
	return entries, nil
}

// Batch returns every member of a batch in rank order.
func (s *Service) Batch(ctx context.Context, batchID string) ([]Entry, error) {
	b, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	students, err := s.store.ListStudentsByIDs(ctx, b.Students)
	if err != nil {
		return nil, err
	}
	Sort(students)
	return project(students), nil
}

func project(students []model.Student) []Entry {
	entries := make([]Entry, 0, len(students))
	for i, st := range students {
		entries = append(entries, Entry{
			Rank:         i + 1,
			ID:           st.ID,
			Name:         st.Name,
			School:       st.School,
			Grade:        st.Grade,
			Points:       st.Points,
			NationalRank: st.NationalRank,
			BatchRank:    st.BatchRank,
		})
	}
	return entries
}
