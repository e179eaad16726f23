package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"filedeck/internal/common"
	"filedeck/internal/storage"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(filepath.Join(t.TempDir(), "catalog.db"))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func userRecord(t *testing.T, email, id, name string) []byte {
	t.Helper()
	rec, err := json.Marshal(map[string]string{"email": email, "id": id, "name": name})
	require.NoError(t, err)
	return rec
}

func fileRecord(t *testing.T, id, userID, email, fileName string) []byte {
	t.Helper()
	rec, err := json.Marshal(map[string]string{
		"id": id, "userId": userID, "email": email, "fileName": fileName,
	})
	require.NoError(t, err)
	return rec
}

func TestInit_ConcurrentCallsRunOneMigration(t *testing.T) {
	var runs atomic.Int32
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		runs.Add(1)
		return orig(ctx, db, dir, opts...)
	}
	t.Cleanup(func() { gooseUpContext = orig })

	e := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = e.Init(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestInit_FailureIsTerminalAndStorageUnavailable(t *testing.T) {
	// A directory is not a valid database file.
	e := New(t.TempDir())
	ctx := context.Background()

	err := e.Init(ctx)
	require.ErrorIs(t, err, common.ErrStorageUnavailable)

	// Cached: same failure without a second open attempt.
	err2 := e.Init(ctx)
	assert.Equal(t, err, err2)
}

func TestInsertAndGetByKey_RoundTrip(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	rec := userRecord(t, "a@x.com", "u1", "Alice")
	key, err := e.Insert(ctx, storage.CollectionUsers, rec)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", key)

	got, err := e.GetByKey(ctx, storage.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.JSONEq(t, string(rec), string(got))
}

func TestInsert_DuplicatePrimaryKey(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.Insert(ctx, storage.CollectionUsers, userRecord(t, "a@x.com", "u1", "Alice"))
	require.NoError(t, err)

	_, err = e.Insert(ctx, storage.CollectionUsers, userRecord(t, "a@x.com", "u2", "Alice Again"))
	require.ErrorIs(t, err, common.ErrDuplicateKey)

	// Exactly one record with that key survives.
	got, err := e.GetByKey(ctx, storage.CollectionUsers, "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, string(got), `"u1"`)
}

func TestInsert_DuplicateUniqueSecondaryIndex(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.Insert(ctx, storage.CollectionUsers, userRecord(t, "a@x.com", "u1", "Alice"))
	require.NoError(t, err)

	_, err = e.Insert(ctx, storage.CollectionUsers, userRecord(t, "b@x.com", "u1", "Bob"))
	require.ErrorIs(t, err, common.ErrDuplicateKey)
}

func TestGetByKey_Missing(t *testing.T) {
	e := newEngine(t)

	_, err := e.GetByKey(context.Background(), storage.CollectionUsers, "nobody@x.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestQueryByIndex(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f1", "u1", "a@x.com", "one.txt"))
	require.NoError(t, err)
	_, err = e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f2", "u1", "a@x.com", "two.txt"))
	require.NoError(t, err)
	_, err = e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f3", "u2", "b@x.com", "other.txt"))
	require.NoError(t, err)

	recs, err := e.QueryByIndex(ctx, storage.CollectionFiles, storage.IndexUserID, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = e.QueryByIndex(ctx, storage.CollectionFiles, storage.IndexEmail, "b@x.com")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, string(recs[0]), `"f3"`)
}

func TestQueryByIndex_NoMatchesIsEmptyNotError(t *testing.T) {
	e := newEngine(t)

	recs, err := e.QueryByIndex(context.Background(), storage.CollectionFiles, storage.IndexUserID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
}

func TestQueryByIndex_UnknownIndex(t *testing.T) {
	e := newEngine(t)

	_, err := e.QueryByIndex(context.Background(), storage.CollectionFiles, "fileName", "x")
	require.ErrorIs(t, err, common.ErrUnknownIndex)
}

func TestListAll(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	recs, err := e.ListAll(ctx, storage.CollectionFiles)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f1", "u1", "a@x.com", "one.txt"))
	require.NoError(t, err)
	_, err = e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f2", "u2", "b@x.com", "two.txt"))
	require.NoError(t, err)

	recs, err = e.ListAll(ctx, storage.CollectionFiles)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestUpsert_InsertsThenReplaces(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Upsert(ctx, storage.CollectionFiles, fileRecord(t, "f1", "u1", "a@x.com", "one.txt")))

	updated := fileRecord(t, "f1", "u1", "a@x.com", "renamed.txt")
	require.NoError(t, e.Upsert(ctx, storage.CollectionFiles, updated))

	got, err := e.GetByKey(ctx, storage.CollectionFiles, "f1")
	require.NoError(t, err)
	assert.JSONEq(t, string(updated), string(got))

	recs, err := e.ListAll(ctx, storage.CollectionFiles)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRemove_IsIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.Insert(ctx, storage.CollectionFiles, fileRecord(t, "f1", "u1", "a@x.com", "one.txt"))
	require.NoError(t, err)

	require.NoError(t, e.Remove(ctx, storage.CollectionFiles, "f1"))

	_, err = e.GetByKey(ctx, storage.CollectionFiles, "f1")
	require.ErrorIs(t, err, common.ErrNotFound)

	// Second delete of the same key is a no-op.
	require.NoError(t, e.Remove(ctx, storage.CollectionFiles, "f1"))
}

func TestUnknownCollection(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.Insert(ctx, "sessions", []byte(`{"id":"x"}`))
	require.ErrorIs(t, err, common.ErrUnknownCollection)

	_, err = e.GetByKey(ctx, "sessions", "x")
	require.ErrorIs(t, err, common.ErrUnknownCollection)

	_, err = e.ListAll(ctx, "sessions")
	require.ErrorIs(t, err, common.ErrUnknownCollection)
}
