package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

func intp(n int) *int { return &n }

func TestEffectiveWithoutSubmission(t *testing.T) {
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t1", DueDate: due}

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before due", due.Add(-time.Hour), StatusPending},
		{"at due", due, StatusPending},
		{"after due", due.Add(time.Second), StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Effective(task, nil, tt.now); got != tt.want {
				t.Errorf("Effective = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveWithSubmission(t *testing.T) {
	task := model.Task{ID: "t1", DueDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		status model.SubmissionStatus
		want   Status
	}{
		{model.SubmissionSubmitted, StatusSubmitted},
		{model.SubmissionReviewed, StatusSubmitted},
		{model.SubmissionResubmit, StatusResubmit},
		{model.SubmissionRejected, StatusRejected},
		{model.SubmissionApproved, StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sub := &model.Submission{Status: tt.status}
			if got := Effective(task, sub, now); got != tt.want {
				t.Errorf("Effective = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanResubmit(t *testing.T) {
	if err := CanResubmit(nil); err != nil {
		t.Errorf("first submission: %v", err)
	}
	if err := CanResubmit(&model.Submission{Status: model.SubmissionResubmit}); err != nil {
		t.Errorf("resubmit requested: %v", err)
	}
	err := CanResubmit(&model.Submission{ID: "s1", Status: model.SubmissionApproved})
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("approved: expected ErrConflict, got %v", err)
	}
}

func TestReviewAwardsPointsOnce(t *testing.T) {
	now := time.Now()
	sub := &model.Submission{ID: "s1", Status: model.SubmissionSubmitted}

	delta, err := Review(sub, Decision{Status: model.SubmissionApproved, Points: intp(15)}, now)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if delta != 15 {
		t.Errorf("first approval delta = %d, want 15", delta)
	}
	if !sub.PointsAwarded || sub.Points != 15 {
		t.Errorf("after approval: awarded=%v points=%d", sub.PointsAwarded, sub.Points)
	}
	if sub.ReviewedAt == nil {
		t.Error("ReviewedAt not set")
	}

	delta, err = Review(sub, Decision{Status: model.SubmissionApproved, Points: intp(15)}, now)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if delta != 0 {
		t.Errorf("re-approval delta = %d, want 0", delta)
	}
}

func TestReviewTransitions(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		start      model.Submission
		decision   Decision
		wantDelta  int
		wantPoints int
		wantAward  bool
	}{
		{
			name:      "reject unapproved",
			start:     model.Submission{Status: model.SubmissionSubmitted},
			decision:  Decision{Status: model.SubmissionRejected},
			wantDelta: 0,
		},
		{
			name:       "revoke approval",
			start:      model.Submission{Status: model.SubmissionApproved, Points: 10, PointsAwarded: true},
			decision:   Decision{Status: model.SubmissionResubmit},
			wantDelta:  -10,
			wantPoints: 10,
		},
		{
			name:       "adjust approved points",
			start:      model.Submission{Status: model.SubmissionApproved, Points: 10, PointsAwarded: true},
			decision:   Decision{Status: model.SubmissionApproved, Points: intp(12)},
			wantDelta:  2,
			wantPoints: 12,
			wantAward:  true,
		},
		{
			name:       "approve after resubmit",
			start:      model.Submission{Status: model.SubmissionSubmitted, Points: 0},
			decision:   Decision{Status: model.SubmissionApproved, Points: intp(8)},
			wantDelta:  8,
			wantPoints: 8,
			wantAward:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.start
			delta, err := Review(&sub, tt.decision, now)
			if err != nil {
				t.Fatalf("Review: %v", err)
			}
			if delta != tt.wantDelta {
				t.Errorf("delta = %d, want %d", delta, tt.wantDelta)
			}
			if sub.Points != tt.wantPoints {
				t.Errorf("points = %d, want %d", sub.Points, tt.wantPoints)
			}
			if sub.PointsAwarded != tt.wantAward {
				t.Errorf("awarded = %v, want %v", sub.PointsAwarded, tt.wantAward)
			}
			if sub.Status != tt.decision.Status {
				t.Errorf("status = %q, want %q", sub.Status, tt.decision.Status)
			}
		})
	}
}

func TestReviewRejectsBadInput(t *testing.T) {
	now := time.Now()
	var verr *model.ValidationError

	sub := &model.Submission{Status: model.SubmissionSubmitted}
	if _, err := Review(sub, Decision{Status: model.SubmissionSubmitted}, now); !errors.As(err, &verr) {
		t.Errorf("status submitted: expected ValidationError, got %v", err)
	}
	if _, err := Review(sub, Decision{Status: model.SubmissionApproved, Points: intp(-1)}, now); !errors.As(err, &verr) {
		t.Errorf("negative points: expected ValidationError, got %v", err)
	}
	if sub.Status != model.SubmissionSubmitted {
		t.Errorf("rejected review mutated status to %q", sub.Status)
	}
}
