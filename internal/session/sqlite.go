package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"filedeck/internal/common"
	"filedeck/internal/dbx"
	"filedeck/internal/models"
)

// sessionKey is the single metadata row holding the serialized user.
const sessionKey = "session.user"

// SQLiteStore keeps the session pointer in the metadata table of the
// embedded catalog database, outside the collection schema.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Current(ctx context.Context) (*models.User, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, sessionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	user := &models.User{}
	if err := json.Unmarshal(value, user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return user, nil
}

// Set replaces the session row. The delete and insert run in one
// transaction so a concurrent Current never observes an empty session
// mid-switch.
func (s *SQLiteStore) Set(ctx context.Context, user *models.User) error {
	value, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, sessionKey); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO metadata (key, value) VALUES (?, ?)`, sessionKey, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, sessionKey)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
