package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"filedeck/internal/common"
	"filedeck/internal/filex"
)

// TokenStorage persists the signed session token between runs.
type TokenStorage interface {
	// Load returns the stored token, or common.ErrNotAuthenticated when
	// none exists.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	// Clear removes the token; clearing an absent token is a no-op.
	Clear(ctx context.Context) error
}

// FileTokenStorage keeps the token in a single file, the CLI's analogue
// of browser local storage.
type FileTokenStorage struct {
	path string
}

func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

func (s *FileTokenStorage) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", common.ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", common.ErrNotAuthenticated
	}
	return token, nil
}

func (s *FileTokenStorage) Save(_ context.Context, token string) error {
	if err := filex.EnsureParentDir(s.path); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStorage) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
