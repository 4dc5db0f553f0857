package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/reviewboard-go/apperror"
)

// PostgresStore persists sessions in the sessions table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a session row.
func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	query := `INSERT INTO sessions (id, user_id, expires_at, created_at)
	          VALUES ($1, $2, $3, $4)`
	_, err := s.db.Exec(ctx, query, sess.ID, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return apperror.NewDatabaseError("failed to create session", err)
	}
	return nil
}

// Find returns the session with the given id. Expired rows are filtered in
// the query, so callers see a simple present/absent signal.
func (s *PostgresStore) Find(ctx context.Context, id string) (*Session, error) {
	var sess Session
	query := `SELECT id, user_id, expires_at, created_at
	          FROM sessions
	          WHERE id = $1 AND expires_at > now()`
	err := s.db.QueryRow(ctx, query, id).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to find session", err)
	}
	return &sess, nil
}

// Delete removes the session with the given id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete session", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to userID.
func (s *PostgresStore) DeleteByUser(ctx context.Context, userID int) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete user sessions", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
