// Package earnings composes teacher and platform earnings reports from
// completed sales.
package earnings

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
)

// DefaultUnknownBatch labels sales that cannot be tied to a batch.
const DefaultUnknownBatch = "Unknown Batch"

// Source is the data the reports read.
type Source interface {
	GetTeacher(ctx context.Context, id string) (model.Teacher, error)
	ListTeachers(ctx context.Context) ([]model.Teacher, error)
	ListBatches(ctx context.Context) ([]model.Batch, error)
	ListBatchesByTeacher(ctx context.Context, teacherID string) ([]model.Batch, error)
	ListSalesByStudents(ctx context.Context, studentIDs []string) ([]model.Sale, error)
	ListSalesByBatches(ctx context.Context, batchIDs []string) ([]model.Sale, error)
	ListCompletedSales(ctx context.Context, since time.Time) ([]model.Sale, error)
	CountActiveStudents(ctx context.Context) (int, error)
}

// Service builds reports. Concurrent platform reports for the same range
// and unknown-batch label share one computation.
type Service struct {
	src Source
	sf  singleflight.Group

	// UnknownLabel names the bucket for unattributed sales. Nil uses
	// DefaultUnknownBatch.
	UnknownLabel func(ctx context.Context) string
}

// New returns a Service reading from src.
func New(src Source) *Service {
	return &Service{src: src}
}

func (s *Service) unknown(ctx context.Context) string {
	if s.UnknownLabel == nil {
		return DefaultUnknownBatch
	}
	return s.UnknownLabel(ctx)
}

// BatchEarnings is one batch's line in the teacher report.
type BatchEarnings struct {
	BatchID   string          `json:"batchId"`
	BatchName string          `json:"batchName"`
	Students  int             `json:"students"`
	Sales     int             `json:"sales"`
	Revenue   decimal.Decimal `json:"revenue"`
	Earnings  decimal.Decimal `json:"earnings"`
}

// Transaction is one completed sale as seen by a teacher.
type Transaction struct {
	SaleID     string          `json:"saleId"`
	Date       time.Time       `json:"date"`
	StudentID  string          `json:"studentId"`
	BatchID    string          `json:"batchId,omitempty"`
	BatchName  string          `json:"batchName"`
	Product    string          `json:"product"`
	Customer   string          `json:"customer"`
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
}

// TeacherReport is the teacher earnings dashboard.
type TeacherReport struct {
	TeacherID         string          `json:"teacherId"`
	TeacherName       string          `json:"teacherName"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	PendingEarnings   decimal.Decimal `json:"pendingEarnings"`
	LastMonthEarnings decimal.Decimal `json:"lastMonthEarnings"`
	LastWeekEarnings  decimal.Decimal `json:"lastWeekEarnings"`
	TotalBatches      int             `json:"totalBatches"`
	TotalStudents     int             `json:"totalStudents"`
	Batches           []BatchEarnings `json:"batches"`
	DailyTransactions []Transaction   `json:"dailyTransactions"`
}

// Teacher builds the report for one teacher as of now.
//
// A sale belongs to the teacher when it was recorded under one of the
// teacher's batches. Sales recorded without a batch fall back to the first
// of the teacher's batches (by id) that lists the student, or to the
// unknown-batch label when the student is linked to the teacher but sits
// in none of its batches.
func (s *Service) Teacher(ctx context.Context, teacherID string, now time.Time) (TeacherReport, error) {
	t, err := s.src.GetTeacher(ctx, teacherID)
	if err != nil {
		return TeacherReport{}, err
	}
	batches, err := s.src.ListBatchesByTeacher(ctx, teacherID)
	if err != nil {
		return TeacherReport{}, err
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].ID < batches[j].ID })

	owned := make(map[string]model.Batch, len(batches))
	batchIDs := make([]string, 0, len(batches))
	studentSet := make(map[string]bool)
	var studentIDs []string
	addStudent := func(id string) {
		if id != "" && !studentSet[id] {
			studentSet[id] = true
			studentIDs = append(studentIDs, id)
		}
	}
	for _, b := range batches {
		owned[b.ID] = b
		batchIDs = append(batchIDs, b.ID)
		for _, id := range b.Students {
			addStudent(id)
		}
	}
	for _, id := range t.Students {
		addStudent(id)
	}

	var byStudent, byBatch []model.Sale
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStudent, err = s.src.ListSalesByStudents(gctx, studentIDs)
		return err
	})
	g.Go(func() error {
		var err error
		byBatch, err = s.src.ListSalesByBatches(gctx, batchIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return TeacherReport{}, err
	}

	report := TeacherReport{
		TeacherID:         t.ID,
		TeacherName:       t.Name,
		TotalRevenue:      decimal.Zero,
		TotalEarnings:     decimal.Zero,
		PendingEarnings:   decimal.Zero,
		LastMonthEarnings: decimal.Zero,
		LastWeekEarnings:  decimal.Zero,
		TotalBatches:      len(batches),
		TotalStudents:     len(studentIDs),
		Batches:           make([]BatchEarnings, 0, len(batches)),
		DailyTransactions: []Transaction{},
	}
	lines := make(map[string]*BatchEarnings, len(batches))
	for _, b := range batches {
		report.Batches = append(report.Batches, BatchEarnings{
			BatchID:   b.ID,
			BatchName: b.BatchName,
			Students:  len(b.Students),
			Revenue:   decimal.Zero,
			Earnings:  decimal.Zero,
		})
	}
	for i := range report.Batches {
		lines[report.Batches[i].BatchID] = &report.Batches[i]
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	weekStart := now.AddDate(0, 0, -7)

	unknown := s.unknown(ctx)
	var attributed []model.Sale
	for _, sl := range mergeSales(byStudent, byBatch) {
		if !sl.Completed() {
			continue
		}
		batchID := ""
		switch {
		case sl.BatchID != "":
			if _, ok := owned[sl.BatchID]; !ok {
				continue
			}
			batchID = sl.BatchID
		case studentSet[sl.StudentID]:
			batchID = firstBatchWith(batches, sl.StudentID)
		default:
			continue
		}
		attributed = append(attributed, sl)

		commission := sl.Amount.Mul(revenue.TeacherRate)
		name := unknown
		if line, ok := lines[batchID]; ok {
			line.Sales++
			line.Revenue = line.Revenue.Add(sl.Amount)
			line.Earnings = line.Earnings.Add(commission)
			name = line.BatchName
		}
		report.DailyTransactions = append(report.DailyTransactions, Transaction{
			SaleID:     sl.ID,
			Date:       sl.Date,
			StudentID:  sl.StudentID,
			BatchID:    batchID,
			BatchName:  name,
			Product:    sl.Product,
			Customer:   sl.Customer,
			Amount:     sl.Amount,
			Commission: commission,
		})
	}

	report.TotalRevenue = revenue.Sum(attributed)
	report.TotalEarnings = report.TotalRevenue.Mul(revenue.TeacherRate)
	report.PendingEarnings = revenue.Sum(revenue.Between(attributed, monthStart, monthStart.AddDate(0, 1, 0))).Mul(revenue.TeacherRate)
	report.LastMonthEarnings = revenue.Sum(revenue.Between(attributed, lastMonthStart, monthStart)).Mul(revenue.TeacherRate)
	report.LastWeekEarnings = revenue.Sum(revenue.Since(attributed, weekStart)).Mul(revenue.TeacherRate)

	sort.SliceStable(report.DailyTransactions, func(i, j int) bool {
		a, b := report.DailyTransactions[i], report.DailyTransactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.SaleID < b.SaleID
	})
	return report, nil
}

// firstBatchWith returns the id of the first batch listing the student,
// or "" when none does. batches must be sorted by id.
func firstBatchWith(batches []model.Batch, studentID string) string {
	for _, b := range batches {
		if b.HasStudent(studentID) {
			return b.ID
		}
	}
	return ""
}

// mergeSales concatenates sale lists dropping duplicate ids.
func mergeSales(lists ...[]model.Sale) []model.Sale {
	seen := make(map[string]bool)
	var out []model.Sale
	for _, list := range lists {
		for _, sl := range list {
			if seen[sl.ID] {
				continue
			}
			seen[sl.ID] = true
			out = append(out, sl)
		}
	}
	return out
}
