package revenue

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// Named time ranges accepted by the reports.
const (
	Range7Days   = "7days"
	Range30Days  = "30days"
	Range90Days  = "90days"
	RangeYear    = "year"
	RangeAllTime = "alltime"
)

// defaultDays is used for the daily rollup of unknown or unbounded ranges.
const defaultDays = 14

// ValidRange reports whether name is a known named range.
func ValidRange(name string) bool {
	switch name {
	case Range7Days, Range30Days, Range90Days, RangeYear, RangeAllTime:
		return true
	}
	return false
}

// DaysForRange maps a named range to the number of days in its daily rollup.
func DaysForRange(name string) int {
	switch name {
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	case RangeYear:
		return 365
	default:
		return defaultDays
	}
}

// RangeStart returns the inclusive lower bound of a named range relative
// to now: midnight of the first day of the range's daily rollup, so every
// sale counted in a total also lands in a Daily bucket. ok is false for
// alltime and unknown names, which are unbounded.
func RangeStart(name string, now time.Time) (start time.Time, ok bool) {
	switch name {
	case Range7Days, Range30Days, Range90Days, RangeYear:
		return firstDay(now, DaysForRange(name)), true
	}
	return time.Time{}, false
}

func firstDay(now time.Time, days int) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(days - 1))
}

// Bucket is one calendar period of a rollup.
type Bucket struct {
	Label  string          `json:"label"`
	Start  time.Time       `json:"start"`
	Sales  int             `json:"sales"`
	Amount decimal.Decimal `json:"amount"`
}

// Daily returns one bucket per calendar day for the days days ending with
// now's day, oldest first. Each bucket holds the completed sales amount
// times rate. Days without sales are present with a zero amount.
func Daily(sales []model.Sale, days int, now time.Time, rate decimal.Decimal) []Bucket {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	first := firstDay(now, days)

	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		day := first.AddDate(0, 0, i)
		label := day.Format("2006-01-02")
		buckets[i] = Bucket{Label: label, Start: day, Amount: decimal.Zero}
		index[label] = i
	}
	fill(buckets, index, sales, rate, func(t time.Time) string {
		return t.In(loc).Format("2006-01-02")
	})
	return buckets
}

// Monthly returns the twelve months of year in loc.
func Monthly(sales []model.Sale, year int, loc *time.Location, rate decimal.Decimal) []Bucket {
	buckets := make([]Bucket, 12)
	index := make(map[string]int, 12)
	for i := range buckets {
		start := time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, loc)
		label := start.Format("2006-01")
		buckets[i] = Bucket{Label: label, Start: start, Amount: decimal.Zero}
		index[label] = i
	}
	fill(buckets, index, sales, rate, func(t time.Time) string {
		return t.In(loc).Format("2006-01")
	})
	return buckets
}

// Yearly returns one bucket per year from the earliest completed sale up
// to now's year. It is empty when there are no completed sales.
func Yearly(sales []model.Sale, now time.Time, rate decimal.Decimal) []Bucket {
	loc := now.Location()
	first := 0
	for _, s := range sales {
		if !s.Completed() {
			continue
		}
		if y := s.Date.In(loc).Year(); first == 0 || y < first {
			first = y
		}
	}
	if first == 0 {
		return nil
	}
	last := now.Year()
	if first > last {
		last = first
	}
	buckets := make([]Bucket, 0, last-first+1)
	index := make(map[string]int, last-first+1)
	for y := first; y <= last; y++ {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		label := start.Format("2006")
		index[label] = len(buckets)
		buckets = append(buckets, Bucket{Label: label, Start: start, Amount: decimal.Zero})
	}
	fill(buckets, index, sales, rate, func(t time.Time) string {
		return t.In(loc).Format("2006")
	})
	return buckets
}

func fill(buckets []Bucket, index map[string]int, sales []model.Sale, rate decimal.Decimal, key func(time.Time) string) {
	for _, s := range sales {
		if !s.Completed() {
			continue
		}
		i, ok := index[key(s.Date)]
		if !ok {
			continue
		}
		buckets[i].Sales++
		buckets[i].Amount = buckets[i].Amount.Add(s.Amount.Mul(rate))
	}
}
