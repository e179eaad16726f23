// Package sqlite implements storage.Engine on an embedded SQLite database.
// Collections are tables of (key, JSON document) pairs; secondary indexes
// are expression indexes over json_extract. The schema is created by a
// one-time versioned goose migration on first open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"filedeck/internal/common"
	"filedeck/internal/storage"
	"filedeck/internal/storage/sqlite/migrations"

	"github.com/pressly/goose/v3"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// gooseUpContext is a seam for testing migration runs.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Engine is an embedded SQLite storage engine. The zero value is not
// usable; construct with New. An Engine starts uninitialized and moves to
// ready (or permanently failed) on first use: Init coalesces all callers
// into a single open-and-migrate attempt, and every operation calls Init
// first.
type Engine struct {
	dsn   string
	specs map[string]storage.Collection

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// New returns an engine for the database at dsn (a file path, or
// ":memory:"). The database is not opened until first use.
func New(dsn string) *Engine {
	return &Engine{dsn: dsn, specs: storage.SpecsByName()}
}

// Init opens the database and applies pending schema migrations exactly
// once, no matter how many goroutines call it. A failed open is terminal:
// the same error is returned on every subsequent call.
func (e *Engine) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.open(ctx)
	})
	return e.initErr
}

func (e *Engine) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", e.dsn)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	// SQLite serializes writers anyway; a single connection also keeps
	// ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
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
// attach the session store to the same database file.
func (e *Engine) DB(ctx context.Context) (*sql.DB, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	return e.db, nil
}

// Close releases the database handle. The engine is not reusable after.
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

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
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

	query := fmt.Sprintf(`INSERT INTO %s (k, v) VALUES (?, ?)`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key, string(record)); err != nil {
		if isConstraintViolation(err) {
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

	query := fmt.Sprintf(`SELECT v FROM %s WHERE k = ?`, spec.Name)

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

	query := fmt.Sprintf(`SELECT v FROM %s WHERE json_extract(v, '$.%s') = ?`, spec.Name, index)
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
		INSERT INTO %s (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v
	`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key, string(record)); err != nil {
		if isConstraintViolation(err) {
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

	// Deleting a missing key is a no-op, not an error.
	query := fmt.Sprintf(`DELETE FROM %s WHERE k = ?`, spec.Name)
	if _, err := e.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}
