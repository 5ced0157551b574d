package store

import (
	"context"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

const teacherColumns = `id, name, email, phone, expertise, batches, students,
	total_earnings, total_students, total_batches, created_at`

func scanTeacher(r rowScanner) (model.Teacher, error) {
	var t model.Teacher
	err := r.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Expertise,
		(*idList)(&t.Batches), (*idList)(&t.Students),
		&t.TotalEarnings, &t.TotalStudents, &t.TotalBatches, &t.CreatedAt)
	return t, err
}

// CreateTeacher inserts a teacher with no batches.
func (s *Store) CreateTeacher(ctx context.Context, t model.Teacher) (model.Teacher, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	t.Batches = []string{}
	t.Students = []string{}
	t.TotalBatches, t.TotalStudents = 0, 0
	t.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO teachers (`+teacherColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Email, t.Phone, t.Expertise, idList(t.Batches), idList(t.Students),
		t.TotalEarnings, t.TotalStudents, t.TotalBatches, t.CreatedAt,
	)
	return t, err
}

// GetTeacher returns a teacher by ID.
func (s *Store) GetTeacher(ctx context.Context, id string) (model.Teacher, error) {
	t, err := scanTeacher(s.q.QueryRowContext(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE id = ?`, id))
	return t, notFound(err, "teacher", id)
}

// ListTeachers returns all teachers ordered by name.
func (s *Store) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teachers []model.Teacher
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// UpdateTeacherProfile writes the editable profile fields of a teacher.
func (s *Store) UpdateTeacherProfile(ctx context.Context, t model.Teacher) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE teachers SET name = ?, email = ?, phone = ?, expertise = ? WHERE id = ?`,
		t.Name, t.Email, t.Phone, t.Expertise, t.ID,
	)
	return affected(res, err, "teacher", t.ID)
}

// SetTeacherEarnings records the teacher's lifetime commission total.
func (s *Store) SetTeacherEarnings(ctx context.Context, t model.Teacher) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE teachers SET total_earnings = ? WHERE id = ?`, t.TotalEarnings, t.ID)
	return affected(res, err, "teacher", t.ID)
}

func (s *Store) saveTeacherLinks(ctx context.Context, t model.Teacher) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE teachers SET batches = ?, students = ?, total_students = ?, total_batches = ? WHERE id = ?`,
		idList(t.Batches), idList(t.Students), t.TotalStudents, t.TotalBatches, t.ID,
	)
	return err
}

func (s *Store) deleteTeacher(ctx context.Context, id string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE subject_id = ?`, id)
	return err
}
