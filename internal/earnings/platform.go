package earnings

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/revenue"
)

// BatchRollup is one batch's share of platform revenue.
type BatchRollup struct {
	BatchID          string          `json:"batchId"`
	BatchName        string          `json:"batchName"`
	TeacherID        string          `json:"teacherId,omitempty"`
	Sales            int             `json:"sales"`
	Revenue          decimal.Decimal `json:"revenue"`
	PlatformEarnings decimal.Decimal `json:"platformEarnings"`
}

// TeacherRollup is one teacher's share of platform revenue.
type TeacherRollup struct {
	TeacherID   string          `json:"teacherId"`
	TeacherName string          `json:"teacherName"`
	Batches     int             `json:"batches"`
	Revenue     decimal.Decimal `json:"revenue"`
	Earnings    decimal.Decimal `json:"earnings"`
}

// PlatformReport is the admin earnings dashboard.
type PlatformReport struct {
	TimeRange string `json:"timeRange"`
	revenue.Shares
	ActiveStudents int              `json:"activeStudents"`
	TotalTeachers  int              `json:"totalTeachers"`
	TotalBatches   int              `json:"totalBatches"`
	Daily          []revenue.Bucket `json:"daily"`
	Yearly         []revenue.Bucket `json:"yearly,omitempty"`
	ByBatch        []BatchRollup    `json:"byBatch"`
	ByTeacher      []TeacherRollup  `json:"byTeacher"`
}

// Platform builds the platform-wide report for a named range. Any failed
// load fails the whole report. The alltime report also carries a yearly
// rollup.
//
// Callers asking for the same range and unknown-batch label at the same
// time share one computation. The shared work is detached from any single
// caller's cancellation; a caller whose ctx ends stops waiting and gets
// ctx.Err() while the others still receive the report.
func (s *Service) Platform(ctx context.Context, timeRange string, now time.Time) (PlatformReport, error) {
	label := s.unknown(ctx)
	work := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(timeRange+"\x00"+label, func() (any, error) {
		return s.platform(work, timeRange, now, label)
	})
	select {
	case <-ctx.Done():
		return PlatformReport{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return PlatformReport{}, res.Err
		}
		return res.Val.(PlatformReport), nil
	}
}

func (s *Service) platform(ctx context.Context, timeRange string, now time.Time, unknownLabel string) (PlatformReport, error) {
	since, _ := revenue.RangeStart(timeRange, now)

	var (
		sales    []model.Sale
		batches  []model.Batch
		teachers []model.Teacher
		active   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.src.ListCompletedSales(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		batches, err = s.src.ListBatches(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		teachers, err = s.src.ListTeachers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		active, err = s.src.CountActiveStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return PlatformReport{}, err
	}

	sort.Slice(batches, func(i, j int) bool { return batches[i].ID < batches[j].ID })
	byID := make(map[string]model.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	report := PlatformReport{
		TimeRange:      timeRange,
		Shares:         revenue.Split(revenue.Sum(sales)),
		ActiveStudents: active,
		TotalTeachers:  len(teachers),
		TotalBatches:   len(batches),
		Daily:          revenue.Daily(sales, revenue.DaysForRange(timeRange), now, revenue.PlatformRate),
	}
	if timeRange == revenue.RangeAllTime {
		report.Yearly = revenue.Yearly(sales, now, revenue.PlatformRate)
	}

	batchLines := make(map[string]*BatchRollup)
	var batchOrder []string
	for _, sl := range sales {
		batchID := sl.BatchID
		if _, ok := byID[batchID]; !ok {
			batchID = firstBatchWith(batches, sl.StudentID)
		}
		line, ok := batchLines[batchID]
		if !ok {
			line = &BatchRollup{BatchID: batchID, Revenue: decimal.Zero, PlatformEarnings: decimal.Zero}
			if b, found := byID[batchID]; found {
				line.BatchName = b.BatchName
				line.TeacherID = b.Teacher
			} else {
				line.BatchName = unknownLabel
			}
			batchLines[batchID] = line
			batchOrder = append(batchOrder, batchID)
		}
		line.Sales++
		line.Revenue = line.Revenue.Add(sl.Amount)
		line.PlatformEarnings = line.PlatformEarnings.Add(sl.Amount.Mul(revenue.PlatformRate))
	}
	sort.Strings(batchOrder)
	report.ByBatch = make([]BatchRollup, 0, len(batchOrder))
	for _, id := range batchOrder {
		report.ByBatch = append(report.ByBatch, *batchLines[id])
	}

	report.ByTeacher = make([]TeacherRollup, 0, len(teachers))
	teacherLines := make(map[string]int, len(teachers))
	for _, t := range teachers {
		teacherLines[t.ID] = len(report.ByTeacher)
		report.ByTeacher = append(report.ByTeacher, TeacherRollup{
			TeacherID:   t.ID,
			TeacherName: t.Name,
			Revenue:     decimal.Zero,
			Earnings:    decimal.Zero,
		})
	}
	for _, b := range batches {
		if i, ok := teacherLines[b.Teacher]; ok {
			report.ByTeacher[i].Batches++
		}
	}
	for _, line := range report.ByBatch {
		i, ok := teacherLines[line.TeacherID]
		if !ok {
			continue
		}
		report.ByTeacher[i].Revenue = report.ByTeacher[i].Revenue.Add(line.Revenue)
		report.ByTeacher[i].Earnings = report.ByTeacher[i].Earnings.Add(line.Revenue.Mul(revenue.TeacherRate))
	}
	return report, nil
}
