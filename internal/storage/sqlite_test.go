package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err, "Open(:memory:)")
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err, "first Open")
	v1, err := s1.AppliedMigrations()
	require.NoError(t, err)
	s1.Close()

	s2, err := Open(dir)
	require.NoError(t, err, "second Open")
	defer s2.Close()
	v2, err := s2.AppliedMigrations()
	require.NoError(t, err)

	assert.Equal(t, len(v1), len(v2), "migration count changed")
}

// TestMigrationsOrdered verifies migrations are applied in ascending numeric order.
func TestMigrationsOrdered(t *testing.T) {
	s := openTestStore(t)

	versions, err := s.AppliedMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1], "migrations not in ascending order: %v", versions)
	}
}

// TestIndexesExist verifies that the journal indexes are created by the migrations.
func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_review_actions_at", "idx_review_actions_kind_at", "idx_review_actions_segment"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		require.NoError(t, err, idx)
		assert.Equal(t, 1, count, "index %s not found", idx)
	}
}

func TestRecordAndGetAction(t *testing.T) {
	s := openTestStore(t)

	at := time.Date(2024, 3, 5, 8, 4, 9, 0, time.UTC)
	require.NoError(t, s.RecordAction(Action{
		ID:               "act-1",
		At:               at,
		Kind:             KindApprove,
		Scope:            "unreviewed",
		SegmentID:        "seg-1",
		DocumentID:       "doc-src",
		TargetDocumentID: "doc-dst",
		Outcome:          OutcomeOK,
	}))

	got, err := s.GetAction("act-1")
	require.NoError(t, err)
	assert.Equal(t, KindApprove, got.Kind)
	assert.Equal(t, "seg-1", got.SegmentID)
	assert.Equal(t, "doc-dst", got.TargetDocumentID)
	assert.True(t, got.At.Equal(at), "At = %v, want %v", got.At, at)
}

func TestGetActionNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetAction("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordAction_Defaults(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RecordAction(Action{Kind: KindDelete, SegmentID: "seg-9"}))

	recent, err := s.RecentActions(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].ID)
	assert.Equal(t, OutcomeOK, recent[0].Outcome)
	assert.False(t, recent[0].At.IsZero())
}

func TestRecentActions_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordAction(Action{
			ID:        fmt.Sprintf("act-%d", i),
			At:        base.Add(time.Duration(i) * time.Minute),
			Kind:      KindUpdate,
			SegmentID: fmt.Sprintf("seg-%d", i),
		}))
	}

	recent, err := s.RecentActions(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	for i, want := range []string{"act-4", "act-3", "act-2"} {
		assert.Equal(t, want, recent[i].ID)
	}
}

func TestCountActions(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []Action{
		{At: base.Add(-48 * time.Hour), Kind: KindApprove},
		{At: base, Kind: KindApprove},
		{At: base.Add(time.Hour), Kind: KindApprove, Outcome: OutcomeFailed, Error: "boom"},
		{At: base.Add(2 * time.Hour), Kind: KindDelete},
	}
	for _, a := range entries {
		require.NoError(t, s.RecordAction(a))
	}

	n, err := s.CountActions(KindApprove, base)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.CountActions("", base)
	require.NoError(t, err)
	assert.Equal(t, 3, all)
}
