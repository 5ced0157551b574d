package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
)

const saleColumns = `id, student_id, batch_id, product, customer, amount, date, status`

func scanSale(r rowScanner) (model.Sale, error) {
	var sl model.Sale
	err := r.Scan(&sl.ID, &sl.StudentID, &sl.BatchID, &sl.Product, &sl.Customer,
		&sl.Amount, &sl.Date, &sl.Status)
	return sl, err
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]model.Sale, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []model.Sale
	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sl)
	}
	return sales, rows.Err()
}

// CreateSale records a sale. Completed sales credit the student's earning
// and the attributed batch teacher's total in the same transaction.
func (s *Store) CreateSale(ctx context.Context, sl model.Sale) (model.Sale, error) {
	if sl.ID == "" {
		sl.ID = newID()
	}
	if sl.Status == "" {
		sl.Status = model.SaleCompleted
	}
	if sl.Date.IsZero() {
		sl.Date = time.Now()
	}
	err := s.InTx(ctx, func(tx *Store) error {
		_, err := tx.q.ExecContext(ctx,
			`INSERT INTO sales (`+saleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sl.ID, sl.StudentID, sl.BatchID, sl.Product, sl.Customer, sl.Amount, sl.Date, sl.Status,
		)
		if err != nil {
			return err
		}
		if sl.Completed() {
			return tx.credit(ctx, sl, decimal.NewFromInt(1))
		}
		return nil
	})
	return sl, err
}

// GetSale returns a sale by ID.
func (s *Store) GetSale(ctx context.Context, id string) (model.Sale, error) {
	sl, err := scanSale(s.q.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id))
	return sl, notFound(err, "sale", id)
}

// UpdateSaleStatus moves a sale to a new status, adjusting the credited
// earnings when it enters or leaves completed.
func (s *Store) UpdateSaleStatus(ctx context.Context, id string, status model.SaleStatus) (model.Sale, error) {
	var sl model.Sale
	err := s.InTx(ctx, func(tx *Store) error {
		var err error
		sl, err = tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		was := sl.Completed()
		sl.Status = status
		if _, err := tx.q.ExecContext(ctx, `UPDATE sales SET status = ? WHERE id = ?`, status, id); err != nil {
			return err
		}
		switch {
		case !was && sl.Completed():
			return tx.credit(ctx, sl, decimal.NewFromInt(1))
		case was && !sl.Completed():
			return tx.credit(ctx, sl, decimal.NewFromInt(-1))
		}
		return nil
	})
	return sl, err
}

// ListSalesByStudent returns a student's sales, newest first.
func (s *Store) ListSalesByStudent(ctx context.Context, studentID string) ([]model.Sale, error) {
	return s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE student_id = ? ORDER BY date DESC, id`, studentID)
}

// ListSalesByStudents returns the completed sales of any of the students.
func (s *Store) ListSalesByStudents(ctx context.Context, studentIDs []string) ([]model.Sale, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	return s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE status = 'completed'
		 AND student_id IN (`+placeholders(len(studentIDs))+`) ORDER BY date, id`,
		anyArgs(studentIDs)...)
}

// ListSalesByBatches returns the completed sales attributed to any of the batches.
func (s *Store) ListSalesByBatches(ctx context.Context, batchIDs []string) ([]model.Sale, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	return s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE status = 'completed'
		 AND batch_id IN (`+placeholders(len(batchIDs))+`) ORDER BY date, id`,
		anyArgs(batchIDs)...)
}

// ListCompletedSales returns completed sales dated at or after since. A zero
// since returns all of them.
func (s *Store) ListCompletedSales(ctx context.Context, since time.Time) ([]model.Sale, error) {
	sales, err := s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE status = 'completed' ORDER BY date, id`)
	if err != nil || since.IsZero() {
		return sales, err
	}
	return revenue.Since(sales, since), nil
}

// credit applies sign * share of a completed sale to the student's earning
// and the attributed teacher's total earnings.
func (s *Store) credit(ctx context.Context, sl model.Sale, sign decimal.Decimal) error {
	shares := revenue.Split(sl.Amount)

	st, err := s.GetStudent(ctx, sl.StudentID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	if err == nil {
		if err := s.setStudentEarning(ctx, st.ID, st.Earning.Add(shares.Student.Mul(sign))); err != nil {
			return err
		}
	}

	if sl.BatchID == "" {
		return nil
	}
	b, err := s.GetBatch(ctx, sl.BatchID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if b.Teacher == "" {
		return nil
	}
	t, err := s.GetTeacher(ctx, b.Teacher)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	t.TotalEarnings = t.TotalEarnings.Add(shares.Teacher.Mul(sign))
	return s.SetTeacherEarnings(ctx, t)
}
