package model

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Role represents an account's access level.
type Role string

const (
	// RoleStudent is a student account.
	RoleStudent Role = "student"
	// RoleTeacher is a teacher (mentor) account.
	RoleTeacher Role = "teacher"
	// RoleAdmin is an admin account.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Account is a login identity. SubjectID points at the Student, Teacher or
// Admin record selected by Role.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	SubjectID    string    `json:"subjectId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	AccountID string `json:"accountId"`
	Role      Role   `json:"role"`
	SubjectID string `json:"subjectId"`
}

type identityCtxKey struct{}

// ContextWithIdentity stores the caller identity in the request context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity from context, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

// Student is a bootcamp participant.
type Student struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	School         string          `json:"school"`
	Grade          string          `json:"grade"`
	Batches        []string        `json:"batches"`
	Teachers       []string        `json:"teachers"`
	Points         int             `json:"points"`
	Attendance     float64         `json:"attendance"`
	TaskCompletion float64         `json:"taskCompletion"`
	Earning        decimal.Decimal `json:"earning"`
	NationalRank   int             `json:"nationalRank"`
	BatchRank      int             `json:"batchRank"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Teacher is a mentor who owns batches. Batches, Students and the two
// counters are derived from batch ownership.
type Teacher struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Expertise     string          `json:"expertise"`
	Batches       []string        `json:"batches"`
	Students      []string        `json:"students"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalStudents int             `json:"totalStudents"`
	TotalBatches  int             `json:"totalBatches"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Admin is a platform operator.
type Admin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Batch is a cohort of students taught by one teacher.
//
// TargetRevenue is the stored default set by whoever created the batch.
// Revenue is the computed actual, refreshed from completed sales.
type Batch struct {
	ID            string          `json:"id"`
	BatchName     string          `json:"batchName"`
	Teacher       string          `json:"teacher,omitempty"`
	Students      []string        `json:"students"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	ScheduleDays  []string        `json:"scheduleDays"`
	SessionTime   string          `json:"sessionTime"`
	TargetRevenue decimal.Decimal `json:"defaultRevenue"`
	Revenue       decimal.Decimal `json:"revenue"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// HasStudent reports whether the student is enrolled in the batch.
func (b Batch) HasStudent(studentID string) bool {
	return slices.Contains(b.Students, studentID)
}

// SessionStatus is derived from the session date, never stored.
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "upcoming"
	SessionCompleted SessionStatus = "completed"
)

// Session is a scheduled class meeting of a batch.
type Session struct {
	ID      string    `json:"id"`
	BatchID string    `json:"batch"`
	Title   string    `json:"title"`
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Notes   string    `json:"notes"`
}

// Status returns upcoming when the session date has not passed yet.
func (s Session) Status(now time.Time) SessionStatus {
	if !s.Date.Before(now) {
		return SessionUpcoming
	}
	return SessionCompleted
}

// TaskStatus is the stored status of a task record.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskOverdue   TaskStatus = "overdue"
)

// Task is an assignment given to a batch.
type Task struct {
	ID          string     `json:"id"`
	BatchID     string     `json:"batch"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// SubmissionStatus is the review state of a task submission.
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionReviewed  SubmissionStatus = "reviewed"
	SubmissionApproved  SubmissionStatus = "approved"
	SubmissionRejected  SubmissionStatus = "rejected"
	SubmissionResubmit  SubmissionStatus = "resubmit"
)

// Valid reports whether s is a known submission status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionSubmitted, SubmissionReviewed, SubmissionApproved, SubmissionRejected, SubmissionResubmit:
		return true
	}
	return false
}

// Submission is a student's answer to a task. There is at most one per
// (student, task) pair.
type Submission struct {
	ID            string           `json:"id"`
	StudentID     string           `json:"student"`
	TaskID        string           `json:"task"`
	BatchID       string           `json:"batch"`
	Content       string           `json:"content"`
	FileURL       string           `json:"fileUrl,omitempty"`
	Status        SubmissionStatus `json:"status"`
	Feedback      string           `json:"feedback"`
	Points        int              `json:"points"`
	PointsAwarded bool             `json:"pointsAwarded"`
	SubmittedAt   time.Time        `json:"submittedAt"`
	ReviewedAt    *time.Time       `json:"reviewedAt,omitempty"`
}

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// Valid reports whether s is a known sale status.
func (s SaleStatus) Valid() bool {
	switch s {
	case SalePending, SaleCompleted, SaleCancelled:
		return true
	}
	return false
}

// Sale is a product sold by a student. BatchID records the batch the
// student sold under at the time of the sale; it is empty on legacy rows.
type Sale struct {
	ID        string          `json:"id"`
	StudentID string          `json:"student"`
	BatchID   string          `json:"batch,omitempty"`
	Product   string          `json:"product"`
	Customer  string          `json:"customer"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Status    SaleStatus      `json:"status"`
}

// Completed reports whether the sale counts toward revenue.
func (s Sale) Completed() bool {
	return s.Status == SaleCompleted
}

// Feedback is a free-text note left by a student.
type Feedback struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// BatchReview is a student's rating of a batch.
type BatchReview struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student"`
	BatchID   string    `json:"batch"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
