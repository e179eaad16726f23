// Package catalog implements the domain operations of the file catalog:
// account registration and login, upload, listing, retagging, and
// deletion. It enforces ownership scoping and translates storage errors
// into the domain taxonomy, leaving persistence to a storage.Engine and
// content to a blob.Store so the embedded and remote backends are
// interchangeable.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"filedeck/internal/auth"
	"filedeck/internal/blob"
	"filedeck/internal/classify"
	"filedeck/internal/common"
	"filedeck/internal/idgen"
	"filedeck/internal/logging"
	"filedeck/internal/models"
	"filedeck/internal/session"
	"filedeck/internal/storage"
)

// Service is the catalog's domain layer. All operations require an active
// session except Register, Login, and CheckUserExists.
type Service struct {
	engine  storage.Engine
	blobs   blob.Store
	session session.Store
	creds   auth.CredentialStore
	log     logging.Logger
}

func NewService(engine storage.Engine, blobs blob.Store, sess session.Store, log logging.Logger) *Service {
	return &Service{engine: engine, blobs: blobs, session: sess, log: log}
}

// WithCredentials attaches a credential store. Registration then records
// passwords and login verifies them; without one, passwords are accepted
// and discarded (the embedded variant).
func (s *Service) WithCredentials(creds auth.CredentialStore) *Service {
	s.creds = creds
	return s
}

// Register creates an account, signs it in, and returns it. Fails with
// common.ErrAlreadyRegistered when the email is taken.
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: empty email", common.ErrInvalidCredentials)
	}

	_, err := s.engine.GetByKey(ctx, storage.CollectionUsers, email)
	if err == nil {
		return nil, common.ErrAlreadyRegistered
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	id, err := idgen.New()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	record, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	if _, err := s.engine.Insert(ctx, storage.CollectionUsers, record); err != nil {
		// Concurrent registrations race to this insert; the primary key
		// decides the winner.
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, common.ErrAlreadyRegistered
		}
		return nil, err
	}

	if s.creds != nil {
		if err := s.creds.Save(ctx, email, password); err != nil {
			return nil, err
		}
	}

	if err := s.session.Set(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "email", email)
	return user, nil
}

// Login signs in an existing account. Fails with common.ErrUserNotFound
// for unknown emails and, when a credential store is attached, with
// common.ErrInvalidCredentials for a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	record, err := s.engine.GetByKey(ctx, storage.CollectionUsers, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := json.Unmarshal(record, user); err != nil {
		return nil, fmt.Errorf("corrupt user record: %w", err)
	}

	if s.creds != nil {
		if err := s.creds.Verify(ctx, email, password); err != nil {
			return nil, err
		}
	}

	if err := s.session.Set(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "email", email)
	return user, nil
}

// CurrentUser returns the session's user, or common.ErrNotAuthenticated.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.session.Current(ctx)
}

// Logout clears the session. Logging out twice is a no-op.
func (s *Service) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// CheckUserExists reports whether an account exists for email, without
// requiring a session.
func (s *Service) CheckUserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.engine.GetByKey(ctx, storage.CollectionUsers, email)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// owner resolves and authorizes the acting user: user must be nil (use
// the session) or match the session's identity.
func (s *Service) owner(ctx context.Context, user *models.User) (*models.User, error) {
	current, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return current, nil
	}
	if user.ID != current.ID {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}

// Upload reads the full content, stores it through the blob store,
// classifies the file, and persists its record. The record is inserted
// only after the content has been read and stored completely, so an
// interrupted read leaves nothing behind.
func (s *Service) Upload(ctx context.Context, user *models.User, content io.Reader, fileName, mimeType string) (*models.File, error) {
	owner, err := s.owner(ctx, user)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	key := idgen.StorageKey()
	url, err := s.blobs.Put(ctx, key, data, mimeType)
	if err != nil {
		return nil, err
	}

	id, err := idgen.New()
	if err != nil {
		return nil, err
	}

	tag := classify.File(fileName, mimeType)

	file := &models.File{
		ID:            id,
		FileName:      fileName,
		FileSize:      int64(len(data)),
		FileType:      mimeType,
		Description:   fileName,
		FileURL:       url,
		StorageKey:    key,
		TagTitle:      tag.Title,
		TagColor:      tag.Color,
		UploadedAt:    time.Now().UTC(),
		UserID:        owner.ID,
		Email:         owner.Email,
		FileExtension: classify.Ext(fileName),
	}

	record, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.Insert(ctx, storage.CollectionFiles, record); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "file uploaded", "id", file.ID, "name", fileName, "size", file.FileSize)
	return file, nil
}

// ListFiles returns the session user's files, normalized for display.
// Records owned by anyone else are never returned.
func (s *Service) ListFiles(ctx context.Context, user *models.User) ([]*models.File, error) {
	owner, err := s.owner(ctx, user)
	if err != nil {
		return nil, err
	}

	records, err := s.engine.QueryByIndex(ctx, storage.CollectionFiles, storage.IndexUserID, owner.ID)
	if err != nil {
		return nil, err
	}

	files := make([]*models.File, 0, len(records))
	for _, record := range records {
		file := &models.File{}
		if err := json.Unmarshal(record, file); err != nil {
			return nil, fmt.Errorf("corrupt file record: %w", err)
		}
		if file.UserID != owner.ID {
			continue
		}
		file.Normalize()
		files = append(files, file)
	}
	return files, nil
}

// GetFile returns one of the session user's files by id, normalized for
// display. Fails with common.ErrFileNotFound when the id does not resolve
// to a file owned by the session user.
func (s *Service) GetFile(ctx context.Context, fileID string) (*models.File, error) {
	current, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.GetByKey(ctx, storage.CollectionFiles, fileID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	file := &models.File{}
	if err := json.Unmarshal(record, file); err != nil {
		return nil, fmt.Errorf("corrupt file record: %w", err)
	}
	if file.UserID != current.ID {
		return nil, common.ErrFileNotFound
	}

	file.Normalize()
	return file, nil
}

// UpdateFileTag changes only the tag fields of a file and returns the
// updated record. Fails with common.ErrFileNotFound when the id does not
// resolve to a file owned by the session user.
func (s *Service) UpdateFileTag(ctx context.Context, fileID, tagTitle, tagColor string) (*models.File, error) {
	current, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.GetByKey(ctx, storage.CollectionFiles, fileID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	file := &models.File{}
	if err := json.Unmarshal(record, file); err != nil {
		return nil, fmt.Errorf("corrupt file record: %w", err)
	}
	if file.UserID != current.ID {
		return nil, common.ErrFileNotFound
	}

	file.TagTitle = tagTitle
	file.TagColor = tagColor

	updated, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Upsert(ctx, storage.CollectionFiles, updated); err != nil {
		return nil, err
	}

	return file, nil
}

// DeleteFile removes a file record and then its stored content. Deleting
// an unknown id is a no-op. When the content cannot be removed after the
// record is gone, the inconsistency is logged and the delete still
// succeeds.
func (s *Service) DeleteFile(ctx context.Context, fileID string) error {
	current, err := s.session.Current(ctx)
	if err != nil {
		return err
	}

	record, err := s.engine.GetByKey(ctx, storage.CollectionFiles, fileID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	file := &models.File{}
	if err := json.Unmarshal(record, file); err != nil {
		return fmt.Errorf("corrupt file record: %w", err)
	}
	if file.UserID != current.ID {
		// Someone else's file looks like an absent one.
		return nil
	}

	if err := s.engine.Remove(ctx, storage.CollectionFiles, fileID); err != nil {
		return err
	}

	if file.StorageKey != "" {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.log.Warn(ctx, "stored object not deleted", "id", fileID, "key", file.StorageKey, "error", err.Error())
		}
	}

	s.log.Info(ctx, "file deleted", "id", fileID)
	return nil
}
