package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

const studentColumns = `id, name, email, phone, school, grade, batches, teachers, points,
	attendance, task_completion, earning, national_rank, batch_rank, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(r rowScanner) (model.Student, error) {
	var st model.Student
	err := r.Scan(&st.ID, &st.Name, &st.Email, &st.Phone, &st.School, &st.Grade,
		(*idList)(&st.Batches), (*idList)(&st.Teachers), &st.Points,
		&st.Attendance, &st.TaskCompletion, &st.Earning, &st.NationalRank, &st.BatchRank, &st.CreatedAt)
	return st, err
}

func (s *Store) queryStudents(ctx context.Context, query string, args ...any) ([]model.Student, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []model.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// CreateStudent inserts a student. Batch and teacher links are owned by the
// roster and start empty.
func (s *Store) CreateStudent(ctx context.Context, st model.Student) (model.Student, error) {
	if st.ID == "" {
		st.ID = newID()
	}
	st.Batches = []string{}
	st.Teachers = []string{}
	st.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Email, st.Phone, st.School, st.Grade,
		idList(st.Batches), idList(st.Teachers), st.Points,
		st.Attendance, st.TaskCompletion, st.Earning, st.NationalRank, st.BatchRank, st.CreatedAt,
	)
	return st, err
}

// GetStudent returns a student by ID.
func (s *Store) GetStudent(ctx context.Context, id string) (model.Student, error) {
	st, err := scanStudent(s.q.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id))
	return st, notFound(err, "student", id)
}

// ListStudents returns all students ordered by name.
func (s *Store) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.queryStudents(ctx, `SELECT `+studentColumns+` FROM students ORDER BY name, id`)
}

// ListStudentsByIDs returns the students among ids that exist. Unknown ids
// are skipped.
func (s *Store) ListStudentsByIDs(ctx context.Context, ids []string) ([]model.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryStudents(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id`,
		anyArgs(ids)...)
}

// TopStudents returns up to limit students by points descending, ties by id.
func (s *Store) TopStudents(ctx context.Context, limit int) ([]model.Student, error) {
	return s.queryStudents(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY points DESC, id ASC LIMIT ?`, limit)
}

// UpdateStudentProfile writes the editable profile fields of a student.
func (s *Store) UpdateStudentProfile(ctx context.Context, st model.Student) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE students SET name = ?, email = ?, phone = ?, school = ?, grade = ?,
		 attendance = ?, task_completion = ? WHERE id = ?`,
		st.Name, st.Email, st.Phone, st.School, st.Grade, st.Attendance, st.TaskCompletion, st.ID,
	)
	return affected(res, err, "student", st.ID)
}

// AddStudentPoints adjusts a student's points by delta.
func (s *Store) AddStudentPoints(ctx context.Context, id string, delta int) error {
	res, err := s.q.ExecContext(ctx, `UPDATE students SET points = points + ? WHERE id = ?`, delta, id)
	return affected(res, err, "student", id)
}

func (s *Store) setStudentEarning(ctx context.Context, id string, earning decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `UPDATE students SET earning = ? WHERE id = ?`, earning, id)
	return affected(res, err, "student", id)
}

// CountActiveStudents returns the number of students enrolled in at least
// one batch.
func (s *Store) CountActiveStudents(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM students
		 WHERE CASE WHEN json_valid(batches) THEN json_array_length(batches) ELSE 0 END > 0`,
	).Scan(&count)
	return count, err
}

func (s *Store) saveStudentLinks(ctx context.Context, st model.Student) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE students SET batches = ?, teachers = ? WHERE id = ?`,
		idList(st.Batches), idList(st.Teachers), st.ID,
	)
	return err
}

func (s *Store) deleteStudent(ctx context.Context, id string) error {
	for _, q := range []string{
		`DELETE FROM students WHERE id = ?`,
		`DELETE FROM accounts WHERE subject_id = ?`,
		`DELETE FROM submissions WHERE student_id = ?`,
	} {
		if _, err := s.q.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}
