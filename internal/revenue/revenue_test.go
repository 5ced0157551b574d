package revenue

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(student, amount string, date time.Time, status model.SaleStatus) model.Sale {
	return model.Sale{StudentID: student, Amount: dec(amount), Date: date, Status: status}
}

func TestSplitSumsToTotal(t *testing.T) {
	for _, total := range []string{"0", "100", "0.01", "333.33", "1234567.89", "7"} {
		t.Run(total, func(t *testing.T) {
			sh := Split(dec(total))
			sum := sh.Platform.Add(sh.Teacher).Add(sh.Student)
			if !sum.Equal(dec(total)) {
				t.Errorf("platform+teacher+student = %s, want %s", sum, total)
			}
		})
	}
}

func TestSplitRates(t *testing.T) {
	sh := Split(dec("100"))
	if !sh.Platform.Equal(dec("20")) {
		t.Errorf("platform = %s, want 20", sh.Platform)
	}
	if !sh.Teacher.Equal(dec("20")) {
		t.Errorf("teacher = %s, want 20", sh.Teacher)
	}
	if !sh.Student.Equal(dec("60")) {
		t.Errorf("student = %s, want 60", sh.Student)
	}
}

func TestBatchRevenue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sales := []model.Sale{
		sale("a", "100", now, model.SaleCompleted),
		sale("b", "50.50", now, model.SaleCompleted),
		sale("a", "999", now, model.SalePending),
		sale("b", "10", now, model.SaleCancelled),
		sale("c", "70", now, model.SaleCompleted),
	}

	tests := []struct {
		name     string
		students []string
		want     string
	}{
		{"two members", []string{"a", "b"}, "150.50"},
		{"one member", []string{"c"}, "70"},
		{"no sales", []string{"z"}, "0"},
		{"no students", nil, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := model.Batch{Students: tt.students}
			got := BatchRevenue(b, sales)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("BatchRevenue = %s, want %s", got, tt.want)
			}
			if again := BatchRevenue(b, sales); !again.Equal(got) {
				t.Errorf("second BatchRevenue = %s, want %s", again, got)
			}
		})
	}
}

func TestDaysForRange(t *testing.T) {
	tests := map[string]int{
		"7days":   7,
		"30days":  30,
		"90days":  90,
		"year":    365,
		"alltime": 14,
		"":        14,
		"bogus":   14,
	}
	for name, want := range tests {
		if got := DaysForRange(name); got != want {
			t.Errorf("DaysForRange(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start, ok := RangeStart("7days", now)
	if !ok {
		t.Fatal("7days should be bounded")
	}
	if want := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if _, ok := RangeStart("alltime", now); ok {
		t.Error("alltime should be unbounded")
	}
}

func TestRangeStartMatchesFirstDailyBucket(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{Range7Days, Range30Days, Range90Days, RangeYear} {
		t.Run(name, func(t *testing.T) {
			start, _ := RangeStart(name, now)
			// Early on the first day: inside the window, so it must be bucketed.
			early := sale("a", "100", start.Add(time.Hour), model.SaleCompleted)
			buckets := Daily([]model.Sale{early}, DaysForRange(name), now, decimal.NewFromInt(1))
			if !buckets[0].Start.Equal(start) {
				t.Errorf("first bucket starts %v, range starts %v", buckets[0].Start, start)
			}
			if !buckets[0].Amount.Equal(dec("100")) {
				t.Errorf("first bucket = %s, want 100", buckets[0].Amount)
			}
		})
	}
}

func TestDailyZeroFills(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	sales := []model.Sale{
		sale("a", "100", now.Add(-2*time.Hour), model.SaleCompleted),
		sale("a", "50", now.AddDate(0, 0, -2), model.SaleCompleted),
		sale("a", "500", now.AddDate(0, 0, -2), model.SalePending),
		sale("a", "80", now.AddDate(0, 0, -30), model.SaleCompleted),
	}

	buckets := Daily(sales, 7, now, PlatformRate)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "2026-03-04" || buckets[6].Label != "2026-03-10" {
		t.Errorf("range = %s..%s, want 2026-03-04..2026-03-10", buckets[0].Label, buckets[6].Label)
	}

	want := map[string]string{"2026-03-10": "20", "2026-03-08": "10"}
	for _, b := range buckets {
		w, ok := want[b.Label]
		if !ok {
			w = "0"
		}
		if !b.Amount.Equal(dec(w)) {
			t.Errorf("bucket %s = %s, want %s", b.Label, b.Amount, w)
		}
	}
}

func TestMonthly(t *testing.T) {
	sales := []model.Sale{
		sale("a", "10", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), model.SaleCompleted),
		sale("a", "15", time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), model.SaleCompleted),
		sale("a", "40", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), model.SaleCompleted),
		sale("a", "99", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), model.SaleCompleted),
	}
	buckets := Monthly(sales, 2026, time.UTC, decimal.NewFromInt(1))
	if len(buckets) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(buckets))
	}
	if !buckets[0].Amount.Equal(dec("25")) || buckets[0].Sales != 2 {
		t.Errorf("january = %s (%d sales), want 25 (2 sales)", buckets[0].Amount, buckets[0].Sales)
	}
	if !buckets[5].Amount.Equal(dec("40")) {
		t.Errorf("june = %s, want 40", buckets[5].Amount)
	}
	if !buckets[11].Amount.IsZero() {
		t.Errorf("december = %s, want 0", buckets[11].Amount)
	}
}

func TestYearly(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	sales := []model.Sale{
		sale("a", "100", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), model.SaleCompleted),
		sale("a", "100", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), model.SaleCompleted),
	}
	buckets := Yearly(sales, now, PlatformRate)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if buckets[1].Label != "2025" || !buckets[1].Amount.IsZero() {
		t.Errorf("2025 bucket = %s %s, want zero", buckets[1].Label, buckets[1].Amount)
	}
	if !buckets[2].Amount.Equal(dec("20")) {
		t.Errorf("2026 = %s, want 20", buckets[2].Amount)
	}
	if got := Yearly(nil, now, PlatformRate); got != nil {
		t.Errorf("expected nil for no sales, got %v", got)
	}
}
