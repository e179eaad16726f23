package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filedeck/internal/common"
	"filedeck/internal/dbx"

	"golang.org/x/crypto/bcrypt"
)

// PostgresCredentialStore keeps bcrypt password hashes in the credentials
// table of the remote catalog database.
type PostgresCredentialStore struct {
	db dbx.DBTX
}

func NewPostgresCredentialStore(db dbx.DBTX) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

func (s *PostgresCredentialStore) Save(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	query := `
		INSERT INTO credentials (email, password_hash) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`
	if _, err := s.db.ExecContext(ctx, query, email, string(hash)); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) Verify(ctx context.Context, email, password string) error {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM credentials WHERE email = $1`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return common.ErrInvalidCredentials
	}
	return nil
}
