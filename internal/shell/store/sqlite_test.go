package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func newDraft(key string, step int) *Draft {
	return &Draft{
		Key:        key,
		Step:       step,
		TemplateID: "nginx",
		Data:       json.RawMessage(fmt.Sprintf(`{"step":%d}`, step)),
	}
}

// =============================================================================
// Draft CRUD Tests
// =============================================================================

func TestSaveDraft_Success(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	d := newDraft("default", 2)
	require.NoError(t, store.SaveDraft(ctx, d))
	assert.False(t, d.CreatedAt.IsZero())
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)

	got, err := store.GetDraft(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "default", got.Key)
	assert.Equal(t, 2, got.Step)
	assert.Equal(t, "nginx", got.TemplateID)
	assert.JSONEq(t, `{"step":2}`, string(got.Data))
	assert.WithinDuration(t, d.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestSaveDraft_Upsert(t *testing.T) {
	store := setupTestStore(t)
	store.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first := newDraft("default", 1)
	require.NoError(t, store.SaveDraft(ctx, first))

	second := newDraft("default", 4)
	require.NoError(t, store.SaveDraft(ctx, second))

	got, err := store.GetDraft(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Step)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "created_at survives an overwrite")
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestSaveDraft_InvalidKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"too long", strings.Repeat("k", MaxKeyLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveDraft(ctx, newDraft(tt.key, 1))
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestSaveDraft_InvalidData(t *testing.T) {
	store := setupTestStore(t)
	d := newDraft("default", 1)
	d.Data = json.RawMessage(`{not json`)

	err := store.SaveDraft(context.Background(), d)
	assert.ErrorIs(t, err, ErrInvalidData)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "SaveDraft", storeErr.Op)
	assert.Equal(t, "default", storeErr.ID)
}

func TestGetDraft_NotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.GetDraft(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDraft(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDraft(ctx, newDraft("default", 1)))

	require.NoError(t, store.DeleteDraft(ctx, "default"))
	_, err := store.GetDraft(ctx, "default")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteDraft(ctx, "default")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDrafts(t *testing.T) {
	store := setupTestStore(t)
	store.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveDraft(ctx, newDraft(key, 1)))
	}
	// Touch "a" so it becomes the most recent.
	require.NoError(t, store.SaveDraft(ctx, newDraft("a", 3)))

	drafts, err := store.ListDrafts(ctx, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, "a", drafts[0].Key)
	assert.Equal(t, 3, drafts[0].Step)
	assert.Equal(t, "c", drafts[1].Key)
	assert.Equal(t, "b", drafts[2].Key)
	assert.Nil(t, drafts[0].Data)

	page, err := store.ListDrafts(ctx, ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Key)
}

func TestListDrafts_Empty(t *testing.T) {
	store := setupTestStore(t)
	drafts, err := store.ListDrafts(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_Commit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx DraftStore) error {
		if err := tx.SaveDraft(ctx, newDraft("one", 1)); err != nil {
			return err
		}
		return tx.SaveDraft(ctx, newDraft("two", 2))
	})
	require.NoError(t, err)

	drafts, err := store.ListDrafts(ctx, DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
}

func TestWithTx_Rollback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx DraftStore) error {
		require.NoError(t, tx.SaveDraft(ctx, newDraft("one", 1)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetDraft(ctx, "one")
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// Options and Errors
// =============================================================================

func TestListOptions_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{"zero", ListOptions{}, ListOptions{Limit: 100}},
		{"too large", ListOptions{Limit: 5000}, ListOptions{Limit: 1000}},
		{"negative offset", ListOptions{Limit: 10, Offset: -1}, ListOptions{Limit: 10}},
		{"kept", ListOptions{Limit: 10, Offset: 5}, ListOptions{Limit: 10, Offset: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestStoreError_Format(t *testing.T) {
	assert.Equal(t, "GetDraft draft k: draft not found",
		NewStoreError("GetDraft", "draft", "k", "draft not found", ErrNotFound).Error())
	assert.Equal(t, "ListDrafts draft: boom",
		NewStoreError("ListDrafts", "draft", "", "boom", nil).Error())
	assert.Equal(t, "WithTx: failed", NewStoreError("WithTx", "", "", "failed", ErrTxFailed).Error())
}
