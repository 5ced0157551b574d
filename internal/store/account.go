package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// CreateAccount inserts a new login identity. Email is stored lowercased.
func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.CreatedAt = time.Now()
	var exists int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE email = ?`, a.Email).Scan(&exists); err != nil {
		return a, err
	}
	if exists > 0 {
		return a, fmt.Errorf("account %s: %w", a.Email, model.ErrConflict)
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, role, subject_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.Role, a.SubjectID, a.CreatedAt,
	)
	if err != nil {
		slog.Error("failed to create account", "email", a.Email, "error", err)
		return a, err
	}
	slog.Info("created account", "id", a.ID, "email", a.Email, "role", a.Role)
	return a, nil
}

// GetAccountByEmail returns the account for an email address.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Account
	err := s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, subject_id, created_at
		 FROM accounts WHERE email = ?`, email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.SubjectID, &a.CreatedAt)
	return a, notFound(err, "account", email)
}

// GetAccount returns an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	var a model.Account
	err := s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, subject_id, created_at
		 FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.SubjectID, &a.CreatedAt)
	return a, notFound(err, "account", id)
}

// ListAccounts returns all accounts, optionally restricted to one role.
func (s *Store) ListAccounts(ctx context.Context, role model.Role) ([]model.Account, error) {
	query := `SELECT id, email, password_hash, role, subject_id, created_at FROM accounts`
	var args []any
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.SubjectID, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountEmail moves the logins of a subject record to a new email.
// The email is stored lowercased and must not belong to another subject.
func (s *Store) UpdateAccountEmail(ctx context.Context, subjectID, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var taken int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE email = ? AND subject_id <> ?`, email, subjectID,
	).Scan(&taken)
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("account %s: %w", email, model.ErrConflict)
	}
	_, err = s.q.ExecContext(ctx, `UPDATE accounts SET email = ? WHERE subject_id = ?`, email, subjectID)
	return err
}

// DeleteAccountsForSubject removes every login pointing at a subject record.
func (s *Store) DeleteAccountsForSubject(ctx context.Context, subjectID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE subject_id = ?`, subjectID)
	return err
}

// AccountCount returns the total number of accounts.
func (s *Store) AccountCount(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// CreateAdmin inserts an admin profile.
func (s *Store) CreateAdmin(ctx context.Context, a model.Admin) (model.Admin, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	a.CreatedAt = time.Now()
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO admins (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.CreatedAt,
	)
	return a, err
}

// GetAdmin returns an admin profile by ID.
func (s *Store) GetAdmin(ctx context.Context, id string) (model.Admin, error) {
	var a model.Admin
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM admins WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Email, &a.CreatedAt)
	return a, notFound(err, "admin", id)
}
