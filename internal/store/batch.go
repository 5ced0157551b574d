package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
)

const batchColumns = `id, batch_name, teacher_id, students, start_date, end_date,
	schedule_days, session_time, target_revenue, revenue, created_at`

// memberOf matches batches whose students array contains the bound id.
const memberOf = `EXISTS (SELECT 1 FROM json_each(CASE WHEN json_valid(students) THEN students ELSE '[]' END) WHERE value = ?)`

func scanBatch(r rowScanner) (model.Batch, error) {
	var b model.Batch
	err := r.Scan(&b.ID, &b.BatchName, &b.Teacher, (*idList)(&b.Students), &b.StartDate, &b.EndDate,
		(*idList)(&b.ScheduleDays), &b.SessionTime, &b.TargetRevenue, &b.Revenue, &b.CreatedAt)
	return b, err
}

func (s *Store) queryBatches(ctx context.Context, query string, args ...any) ([]model.Batch, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatch returns a batch by ID.
func (s *Store) GetBatch(ctx context.Context, id string) (model.Batch, error) {
	b, err := scanBatch(s.q.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id))
	return b, notFound(err, "batch", id)
}

// ListBatches returns all batches ordered by id.
func (s *Store) ListBatches(ctx context.Context) ([]model.Batch, error) {
	return s.queryBatches(ctx, `SELECT `+batchColumns+` FROM batches ORDER BY id`)
}

// ListBatchesByTeacher returns the batches a teacher owns, ordered by id.
func (s *Store) ListBatchesByTeacher(ctx context.Context, teacherID string) ([]model.Batch, error) {
	return s.queryBatches(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE teacher_id = ? ORDER BY id`, teacherID)
}

// ListBatchesByStudent returns the batches listing a student, ordered by id.
func (s *Store) ListBatchesByStudent(ctx context.Context, studentID string) ([]model.Batch, error) {
	return s.queryBatches(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE `+memberOf+` ORDER BY id`, studentID)
}

func (s *Store) putBatch(ctx context.Context, b model.Batch) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO batches (`+batchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET batch_name = excluded.batch_name, teacher_id = excluded.teacher_id,
		 students = excluded.students, start_date = excluded.start_date, end_date = excluded.end_date,
		 schedule_days = excluded.schedule_days, session_time = excluded.session_time,
		 target_revenue = excluded.target_revenue`,
		b.ID, b.BatchName, b.Teacher, idList(b.Students), b.StartDate, b.EndDate,
		idList(b.ScheduleDays), b.SessionTime, b.TargetRevenue, b.Revenue, b.CreatedAt,
	)
	return err
}

// DeleteBatch removes a batch in one transaction together with its
// sessions, its tasks and their submissions. Points awarded for those
// submissions are taken back and every roster back-reference is cleared.
// It returns the attachment urls of the removed submissions.
func (s *Store) DeleteBatch(ctx context.Context, id string) ([]string, error) {
	var urls []string
	err := s.InTx(ctx, func(tx *Store) error {
		tasks, err := tx.ListTasksByBatches(ctx, []string{id})
		if err != nil {
			return err
		}
		for _, t := range tasks {
			released, err := tx.DeleteTask(ctx, t.ID)
			if err != nil {
				return err
			}
			urls = append(urls, released...)
		}
		_, err = tx.Roster(ctx, func(g *roster.Graph) error {
			return g.DeleteBatch(id)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *Store) deleteBatch(ctx context.Context, id string) error {
	for _, q := range []string{
		`DELETE FROM batches WHERE id = ?`,
		`DELETE FROM sessions WHERE batch_id = ?`,
	} {
		if _, err := s.q.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// ComputeBatchRevenue sums the completed sales of a batch's students. A
// missing batch yields zero; callers check existence separately.
func (s *Store) ComputeBatchRevenue(ctx context.Context, batchID string) (decimal.Decimal, error) {
	b, err := s.GetBatch(ctx, batchID)
	if errors.Is(err, model.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	if len(b.Students) == 0 {
		return decimal.Zero, nil
	}
	sales, err := s.ListSalesByStudents(ctx, b.Students)
	if err != nil {
		return decimal.Zero, err
	}
	return revenue.BatchRevenue(b, sales), nil
}

// RefreshBatchRevenues recomputes every batch's revenue from completed sales
// and writes the result back to the revenue column. TargetRevenue is left
// untouched. It returns the refreshed batches.
func (s *Store) RefreshBatchRevenues(ctx context.Context) ([]model.Batch, error) {
	var batches []model.Batch
	err := s.InTx(ctx, func(tx *Store) error {
		var err error
		batches, err = tx.ListBatches(ctx)
		if err != nil {
			return err
		}
		sales, err := tx.ListCompletedSales(ctx, time.Time{})
		if err != nil {
			return err
		}
		changed := 0
		for i := range batches {
			rev := revenue.BatchRevenue(batches[i], sales)
			if rev.Equal(batches[i].Revenue) {
				continue
			}
			batches[i].Revenue = rev
			if _, err := tx.q.ExecContext(ctx,
				`UPDATE batches SET revenue = ? WHERE id = ?`, rev, batches[i].ID); err != nil {
				return err
			}
			changed++
		}
		slog.Debug("refreshed batch revenues", "batches", len(batches), "changed", changed)
		return nil
	})
	return batches, err
}
