// Package revenue derives batch revenue and commission splits from sales.
// Everything here is pure; callers load the sales.
package revenue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// Commission rates. The student share is whatever remains after the
// platform and teacher shares so the three always add up to the total.
var (
	PlatformRate = decimal.RequireFromString("0.20")
	TeacherRate  = decimal.RequireFromString("0.20")
	StudentRate  = decimal.NewFromInt(1).Sub(PlatformRate).Sub(TeacherRate)
)

// Shares is a total split three ways.
type Shares struct {
	Total    decimal.Decimal `json:"totalRevenue"`
	Platform decimal.Decimal `json:"platformEarnings"`
	Teacher  decimal.Decimal `json:"teacherEarnings"`
	Student  decimal.Decimal `json:"studentEarnings"`
}

// Split divides total into platform, teacher and student shares.
func Split(total decimal.Decimal) Shares {
	platform := total.Mul(PlatformRate)
	teacher := total.Mul(TeacherRate)
	return Shares{
		Total:    total,
		Platform: platform,
		Teacher:  teacher,
		Student:  total.Sub(platform).Sub(teacher),
	}
}

// Sum adds the amounts of the completed sales.
func Sum(sales []model.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		if s.Completed() {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// BatchRevenue sums completed sales made by the batch's students. A batch
// with no students has zero revenue.
func BatchRevenue(b model.Batch, sales []model.Sale) decimal.Decimal {
	if len(b.Students) == 0 {
		return decimal.Zero
	}
	members := make(map[string]bool, len(b.Students))
	for _, id := range b.Students {
		members[id] = true
	}
	total := decimal.Zero
	for _, s := range sales {
		if s.Completed() && members[s.StudentID] {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// Since returns the sales dated at or after start.
func Since(sales []model.Sale, start time.Time) []model.Sale {
	var out []model.Sale
	for _, s := range sales {
		if !s.Date.Before(start) {
			out = append(out, s)
		}
	}
	return out
}

// Between returns the sales dated in [start, end).
func Between(sales []model.Sale, start, end time.Time) []model.Sale {
	var out []model.Sale
	for _, s := range sales {
		if !s.Date.Before(start) && s.Date.Before(end) {
			out = append(out, s)
		}
	}
	return out
}
