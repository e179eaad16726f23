// Package storage defines the persistence contract the catalog is built
// on: named collections of JSON records with primary keys and secondary
// indexes, behind an engine with a coalesced open/upgrade lifecycle.
//
// Two implementations exist: an embedded SQLite store (storage/sqlite) and
// a PostgreSQL store (storage/postgres). The catalog works against either.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Engine is the transactional key/value store the catalog persists into.
// Records are JSON documents. Each operation runs in its own implicit
// transaction scoped to the one collection it touches.
//
// Error contract (matched with errors.Is against internal/common):
//   - Insert on an existing primary key or unique index value: ErrDuplicateKey.
//   - GetByKey on a missing key: ErrNotFound.
//   - QueryByIndex / ListAll with no matches: empty slice, nil error.
//   - Remove of a missing key: nil.
//   - Underlying engine failures: wrapped ErrStorageUnavailable.
//
// Every operation initializes the engine first, so Init never needs to be
// called explicitly; it exists so callers can fail fast at startup.
type Engine interface {
	// Init ensures the engine is open and the schema upgraded. Idempotent
	// and safe to call concurrently: all callers share one open attempt.
	Init(ctx context.Context) error

	// Insert persists a new record and returns its primary key, extracted
	// from the record via the collection's key path.
	Insert(ctx context.Context, collection string, record []byte) (string, error)

	// GetByKey returns the record stored under key.
	GetByKey(ctx context.Context, collection, key string) ([]byte, error)

	// QueryByIndex returns all records whose indexed field equals value.
	// Order is not guaranteed.
	QueryByIndex(ctx context.Context, collection, index, value string) ([][]byte, error)

	// ListAll returns every record in the collection.
	ListAll(ctx context.Context, collection string) ([][]byte, error)

	// Upsert replaces the record at its primary key, inserting when absent.
	Upsert(ctx context.Context, collection string, record []byte) error

	// Remove deletes by primary key.
	Remove(ctx context.Context, collection, key string) error
}

// Index declares a secondary index over a top-level record field.
type Index struct {
	Name   string
	Unique bool
}

// Collection declares a named record partition: its primary key path and
// secondary indexes. The schema upgrade creates one table plus one index
// per entry.
type Collection struct {
	Name    string
	KeyPath string
	Indexes []Index
}

// Collection names used by the catalog.
const (
	CollectionUsers = "users"
	CollectionFiles = "files"
)

// Index names used by the catalog.
const (
	IndexUserID = "userId"
	IndexEmail  = "email"
	IndexID     = "id"
)

// Collections is schema version 1: users keyed by email with a unique id
// index, files keyed by id with non-unique owner indexes.
var Collections = []Collection{
	{
		Name:    CollectionUsers,
		KeyPath: "email",
		Indexes: []Index{{Name: IndexID, Unique: true}},
	},
	{
		Name:    CollectionFiles,
		KeyPath: "id",
		Indexes: []Index{{Name: IndexUserID}, {Name: IndexEmail}},
	},
}

// SpecsByName maps the declared collections by name for implementations.
func SpecsByName() map[string]Collection {
	m := make(map[string]Collection, len(Collections))
	for _, c := range Collections {
		m[c.Name] = c
	}
	return m
}

// ExtractKey pulls the primary key value out of a JSON record using the
// collection's key path. The keyed field must be a non-empty string.
func ExtractKey(record []byte, keyPath string) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(record, &doc); err != nil {
		return "", fmt.Errorf("invalid record: %w", err)
	}

	raw, ok := doc[keyPath]
	if !ok {
		return "", fmt.Errorf("record has no %q field", keyPath)
	}

	var key string
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("record field %q is not a string: %w", keyPath, err)
	}
	if key == "" {
		return "", fmt.Errorf("record field %q is empty", keyPath)
	}
	return key, nil
}
