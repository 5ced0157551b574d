// Package tasks derives per-student task status and applies mentor review
// transitions to submissions.
package tasks

import (
	"fmt"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// Status is the effective state of a task for one student.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusSubmitted Status = "submitted"
	StatusResubmit  Status = "resubmit"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// Effective derives the status of task for a student whose current
// submission is sub (nil when none). Overdue is computed here and never
// stored.
func Effective(task model.Task, sub *model.Submission, now time.Time) Status {
	if sub == nil {
		if now.After(task.DueDate) {
			return StatusOverdue
		}
		return StatusPending
	}
	switch sub.Status {
	case model.SubmissionApproved:
		return StatusCompleted
	case model.SubmissionResubmit:
		return StatusResubmit
	case model.SubmissionRejected:
		return StatusRejected
	default:
		return StatusSubmitted
	}
}

// CanResubmit reports whether a student may submit again over existing.
// An approved submission is final.
func CanResubmit(existing *model.Submission) error {
	if existing != nil && existing.Status == model.SubmissionApproved {
		return fmt.Errorf("submission %s already approved: %w", existing.ID, model.ErrConflict)
	}
	return nil
}

// Decision is a mentor's review of a submission.
type Decision struct {
	Status   model.SubmissionStatus
	Points   *int
	Feedback *string
}

// Review applies d to sub and returns the change to the student's points.
//
// Points are credited once, on entering approved. Leaving approved takes
// the credited points back. Changing the points of an already approved
// submission credits only the difference, so approving twice never
// counts twice.
func Review(sub *model.Submission, d Decision, now time.Time) (int, error) {
	switch d.Status {
	case model.SubmissionReviewed, model.SubmissionApproved, model.SubmissionRejected, model.SubmissionResubmit:
	default:
		return 0, model.NewValidationError("status", fmt.Sprintf("cannot review to %q", d.Status))
	}
	points := sub.Points
	if d.Points != nil {
		if *d.Points < 0 {
			return 0, model.NewValidationError("points", "must not be negative")
		}
		points = *d.Points
	}

	delta := 0
	switch {
	case d.Status == model.SubmissionApproved && !sub.PointsAwarded:
		delta = points
		sub.PointsAwarded = true
	case d.Status == model.SubmissionApproved && sub.PointsAwarded:
		delta = points - sub.Points
	case sub.PointsAwarded:
		delta = -sub.Points
		sub.PointsAwarded = false
	}

	sub.Status = d.Status
	sub.Points = points
	if d.Feedback != nil {
		sub.Feedback = *d.Feedback
	}
	reviewed := now
	sub.ReviewedAt = &reviewed
	return delta, nil
}
