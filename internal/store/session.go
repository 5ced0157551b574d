package store

import (
	"context"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// CreateSession schedules a class meeting.
func (s *Store) CreateSession(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.ID == "" {
		sess.ID = newID()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO sessions (id, batch_id, title, date, time, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.BatchID, sess.Title, sess.Date, sess.Time, sess.Notes,
	)
	return sess, err
}

// GetSession returns a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (model.Session, error) {
	var sess model.Session
	err := s.q.QueryRowContext(ctx,
		`SELECT id, batch_id, title, date, time, notes FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.BatchID, &sess.Title, &sess.Date, &sess.Time, &sess.Notes)
	return sess, notFound(err, "session", id)
}

// ListSessionsByBatch returns a batch's sessions in date order.
func (s *Store) ListSessionsByBatch(ctx context.Context, batchID string) ([]model.Session, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, batch_id, title, date, time, notes FROM sessions WHERE batch_id = ? ORDER BY date, id`, batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.BatchID, &sess.Title, &sess.Date, &sess.Time, &sess.Notes); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// UpdateSession rewrites a session's schedule and notes.
func (s *Store) UpdateSession(ctx context.Context, sess model.Session) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE sessions SET title = ?, date = ?, time = ?, notes = ? WHERE id = ?`,
		sess.Title, sess.Date, sess.Time, sess.Notes, sess.ID,
	)
	return affected(res, err, "session", sess.ID)
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return affected(res, err, "session", id)
}
