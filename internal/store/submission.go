package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

const submissionColumns = `id, student_id, task_id, batch_id, content, file_url, status,
	feedback, points, points_awarded, submitted_at, reviewed_at`

func scanSubmission(r rowScanner) (model.Submission, error) {
	var sub model.Submission
	err := r.Scan(&sub.ID, &sub.StudentID, &sub.TaskID, &sub.BatchID, &sub.Content, &sub.FileURL,
		&sub.Status, &sub.Feedback, &sub.Points, &sub.PointsAwarded, &sub.SubmittedAt, &sub.ReviewedAt)
	return sub, err
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubmission returns a submission by ID.
func (s *Store) GetSubmission(ctx context.Context, id string) (model.Submission, error) {
	sub, err := scanSubmission(s.q.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	return sub, notFound(err, "submission", id)
}

// FindSubmission returns the current submission for a (student, task)
// pair, or nil when there is none.
func (s *Store) FindSubmission(ctx context.Context, studentID, taskID string) (*model.Submission, error) {
	sub, err := scanSubmission(s.q.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = ? AND task_id = ?`,
		studentID, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubmissionsByTask returns every submission for a task.
func (s *Store) ListSubmissionsByTask(ctx context.Context, taskID string) ([]model.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE task_id = ? ORDER BY submitted_at, id`, taskID)
}

// ListSubmissionsByStudent returns every submission a student has made.
func (s *Store) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]model.Submission, error) {
	return s.querySubmissions(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = ? ORDER BY submitted_at, id`, studentID)
}

// UpsertSubmission creates the submission for (student, task), or replaces
// the existing one in place keeping its id. allow is consulted with the
// existing record (nil when none) before anything is written. The returned
// string is the attachment url the replaced record pointed at, if any.
func (s *Store) UpsertSubmission(ctx context.Context, sub model.Submission, allow func(existing *model.Submission) error) (model.Submission, string, error) {
	var previousURL string
	err := s.InTx(ctx, func(tx *Store) error {
		existing, err := tx.FindSubmission(ctx, sub.StudentID, sub.TaskID)
		if err != nil {
			return err
		}
		if allow != nil {
			if err := allow(existing); err != nil {
				return err
			}
		}
		sub.Status = model.SubmissionSubmitted
		sub.SubmittedAt = time.Now()
		sub.ReviewedAt = nil
		sub.Feedback = ""
		sub.Points = 0

		if existing == nil {
			sub.ID = newID()
			sub.PointsAwarded = false
			_, err := tx.q.ExecContext(ctx,
				`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				sub.ID, sub.StudentID, sub.TaskID, sub.BatchID, sub.Content, sub.FileURL, sub.Status,
				sub.Feedback, sub.Points, sub.PointsAwarded, sub.SubmittedAt, sub.ReviewedAt,
			)
			return err
		}

		sub.ID = existing.ID
		sub.PointsAwarded = existing.PointsAwarded
		if existing.FileURL != sub.FileURL {
			previousURL = existing.FileURL
		}
		_, err = tx.q.ExecContext(ctx,
			`UPDATE submissions SET batch_id = ?, content = ?, file_url = ?, status = ?, feedback = ?,
			 points = ?, submitted_at = ?, reviewed_at = NULL WHERE id = ?`,
			sub.BatchID, sub.Content, sub.FileURL, sub.Status, sub.Feedback,
			sub.Points, sub.SubmittedAt, sub.ID,
		)
		return err
	})
	return sub, previousURL, err
}

// ApplyReview loads a submission, lets review mutate it and report a points
// delta, then persists the submission and the student's points in one
// transaction.
func (s *Store) ApplyReview(ctx context.Context, id string, review func(sub *model.Submission) (int, error)) (model.Submission, int, error) {
	var (
		sub   model.Submission
		delta int
	)
	err := s.InTx(ctx, func(tx *Store) error {
		var err error
		sub, err = tx.GetSubmission(ctx, id)
		if err != nil {
			return err
		}
		delta, err = review(&sub)
		if err != nil {
			return err
		}
		_, err = tx.q.ExecContext(ctx,
			`UPDATE submissions SET status = ?, feedback = ?, points = ?, points_awarded = ?, reviewed_at = ?
			 WHERE id = ?`,
			sub.Status, sub.Feedback, sub.Points, sub.PointsAwarded, sub.ReviewedAt, sub.ID,
		)
		if err != nil {
			return err
		}
		if delta != 0 {
			return tx.AddStudentPoints(ctx, sub.StudentID, delta)
		}
		return nil
	})
	return sub, delta, err
}
