package store

import (
	"context"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// CreateFeedback stores a student's note.
func (s *Store) CreateFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	if f.ID == "" {
		f.ID = newID()
	}
	f.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO feedback (id, student_id, subject, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.StudentID, f.Subject, f.Message, f.CreatedAt,
	)
	return f, err
}

// ListFeedback returns feedback entries, newest first. An empty studentID
// returns everyone's.
func (s *Store) ListFeedback(ctx context.Context, studentID string) ([]model.Feedback, error) {
	query := `SELECT id, student_id, subject, message, created_at FROM feedback`
	var args []any
	if studentID != "" {
		query += ` WHERE student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY created_at DESC, id`
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.StudentID, &f.Subject, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

// CreateBatchReview stores a student's rating of a batch.
func (s *Store) CreateBatchReview(ctx context.Context, r model.BatchReview) (model.BatchReview, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	r.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO batch_reviews (id, student_id, batch_id, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StudentID, r.BatchID, r.Rating, r.Comment, r.CreatedAt,
	)
	return r, err
}

// ListBatchReviews returns a batch's reviews, newest first.
func (s *Store) ListBatchReviews(ctx context.Context, batchID string) ([]model.BatchReview, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, student_id, batch_id, rating, comment, created_at
		 FROM batch_reviews WHERE batch_id = ? ORDER BY created_at DESC, id`, batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reviews []model.BatchReview
	for rows.Next() {
		var r model.BatchReview
		if err := rows.Scan(&r.ID, &r.StudentID, &r.BatchID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
