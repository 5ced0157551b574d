package store

import (
	"context"
	"errors"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

const taskColumns = `id, batch_id, title, description, due_date, status, created_at`

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	err := r.Scan(&t.ID, &t.BatchID, &t.Title, &t.Description, &t.DueDate, &t.Status, &t.CreatedAt)
	return t, err
}

// CreateTask assigns a task to a batch.
func (s *Store) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	t.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BatchID, t.Title, t.Description, t.DueDate, t.Status, t.CreatedAt,
	)
	return t, err
}

// GetTask returns a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	t, err := scanTask(s.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	return t, notFound(err, "task", id)
}

// ListTasksByBatches returns the tasks of the given batches by due date.
func (s *Store) ListTasksByBatches(ctx context.Context, batchIDs []string) ([]model.Task, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE batch_id IN (`+placeholders(len(batchIDs))+`)
		 ORDER BY due_date, id`, anyArgs(batchIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites a task's editable fields.
func (s *Store) UpdateTask(ctx context.Context, t model.Task) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, due_date = ?, status = ? WHERE id = ?`,
		t.Title, t.Description, t.DueDate, t.Status, t.ID,
	)
	return affected(res, err, "task", t.ID)
}

// DeleteTask removes a task and its submissions, taking back the points of
// approved ones. It returns the attachment urls of the deleted submissions
// so the caller can release them.
func (s *Store) DeleteTask(ctx context.Context, id string) ([]string, error) {
	var urls []string
	err := s.InTx(ctx, func(tx *Store) error {
		subs, err := tx.ListSubmissionsByTask(ctx, id)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if sub.FileURL != "" {
				urls = append(urls, sub.FileURL)
			}
			if sub.PointsAwarded && sub.Points != 0 {
				err := tx.AddStudentPoints(ctx, sub.StudentID, -sub.Points)
				if err != nil && !errors.Is(err, model.ErrNotFound) {
					return err
				}
			}
		}
		res, err := tx.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err := affected(res, err, "task", id); err != nil {
			return err
		}
		_, err = tx.q.ExecContext(ctx, `DELETE FROM submissions WHERE task_id = ?`, id)
		return err
	})
	return urls, err
}
