// Package postgres implements storage.Engine on PostgreSQL. Collections
// are tables of (key, jsonb document) pairs with expression indexes, so
// the catalog's contract is identical to the embedded backend's.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"filedeck/internal/common"
	"filedeck/internal/storage"
	"filedeck/internal/storage/postgres/migrations"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// gooseUpContext is a seam for testing migration runs.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Engine is a PostgreSQL storage engine. Like the embedded backend, Init
// coalesces concurrent callers into one open-and-migrate attempt and every
// operation initializes first.
type Engine struct {
	dsn   string
	specs map[string]storage.Collection

	initOnce sync.Once
	initErr  error
	db       *sql.DB

	// managed is false when the handle was supplied by the caller; then
	// migrations are assumed to be applied externally.
	managed bool
}

// New returns an engine that will connect to dsn and run migrations on
// first use.
func New(dsn string) *Engine {
	return &Engine{dsn: dsn, specs: storage.SpecsByName(), managed: true}
}

// NewWithDB wraps an existing handle whose schema is managed elsewhere.
func NewWithDB(db *sql.DB) *Engine {
	return &Engine{db: db, specs: storage.SpecsByName()}
}

func (e *Engine) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.open(ctx)
	})
	return e.initErr
}

func (e *Engine) open(ctx context.Context) error {
	if !e.managed {
		if err := e.db.PingContext(ctx); err != nil {
			return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		return nil
	}

	db, err := sql.Open("pgx", e.dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	e.db = db
	return nil
}

// DB initializes the engine and returns the underlying handle. Used to
// attach the credential store to the same database.
func (e *Engine) DB(ctx context.Context) (*sql.DB, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	return e.db, nil
}

// Close releases the database handle.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func (e *Engine) spec(collection string) (storage.Collection, error) {
	s, ok := e.specs[collection]
	if !ok {
		return storage.Collection{}, fmt.Errorf("%w: %s", common.ErrUnknownCollection, collection)
	}
	return s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (e *Engine) Insert(ctx context.Context, collection string, record []byte) (string, error) {
	if err := e.Init(ctx); err != nil {
		return "", err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return "", err
	}

	key, err := storage.ExtractKey(record, spec.KeyPath)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`INSERT INTO %s (k, v) VALUES ($1, $2::jsonb)`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key, string(record)); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s/%s", common.ErrDuplicateKey, collection, key)
		}
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	return key, nil
}

func (e *Engine) GetByKey(ctx context.Context, collection, key string) ([]byte, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT v FROM %s WHERE k = $1`, spec.Name)

	var record []byte
	err = e.db.QueryRowContext(ctx, query, key).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrNotFound, collection, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return record, nil
}

func (e *Engine) QueryByIndex(ctx context.Context, collection, index, value string) ([][]byte, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return nil, err
	}

	found := false
	for _, idx := range spec.Indexes {
		if idx.Name == index {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s/%s", common.ErrUnknownIndex, collection, index)
	}

	query := fmt.Sprintf(`SELECT v FROM %s WHERE v->>'%s' = $1`, spec.Name, index)
	return e.queryRecords(ctx, query, value)
}

func (e *Engine) ListAll(ctx context.Context, collection string) ([][]byte, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return nil, err
	}

	return e.queryRecords(ctx, fmt.Sprintf(`SELECT v FROM %s`, spec.Name))
}

func (e *Engine) queryRecords(ctx context.Context, query string, args ...any) ([][]byte, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	result := [][]byte{}
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return result, nil
}

func (e *Engine) Upsert(ctx context.Context, collection string, record []byte) error {
	if err := e.Init(ctx); err != nil {
		return err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return err
	}

	key, err := storage.ExtractKey(record, spec.KeyPath)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (k, v) VALUES ($1, $2::jsonb)
		ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v
	`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key, string(record)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", common.ErrDuplicateKey, collection, key)
		}
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

func (e *Engine) Remove(ctx context.Context, collection, key string) error {
	if err := e.Init(ctx); err != nil {
		return err
	}
	spec, err := e.spec(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE k = $1`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}
