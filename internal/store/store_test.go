package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/grez-lucas/bank-automation/internal/scraper/bank/bpm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "lookups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func foundResult() bpm.LookupResult {
	return bpm.BuildResult([]bpm.Column{
		bpm.NewTextColumn(1, "View"),
		bpm.NewTextColumn(2, "CBPR-MX"),
		bpm.NewTextColumn(3, "Completed"),
		bpm.NewNumericColumn(4, "27", 27),
		bpm.NewTextColumn(5, "USD"),
	}, bpm.EnvironmentBUAT)
}

func TestRecordAndListLookups(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.RecordLookup(ctx, "TXN123", "portal", foundResult())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = db.RecordLookup(ctx, "MISSING", "grid.html", bpm.NotFoundResult())
	require.NoError(t, err)

	all, err := db.ListLookups(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "MISSING", all[0].Reference, "newest first")

	got, err := db.ListLookups(ctx, "TXN123", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	l := got[0]
	assert.Equal(t, id, l.ID)
	assert.Equal(t, "portal", l.Source)
	assert.True(t, l.Found)
	assert.Equal(t, bpm.EnvironmentBUAT, l.Environment)
	assert.Equal(t, "27", l.Fourth)
	assert.Equal(t, "USD", l.Last)
	assert.False(t, l.CreatedAt.IsZero())

	if diff := cmp.Diff(foundResult(), l.Result, cmp.AllowUnexported(bpm.Column{}), ignoreTimestamp); diff != "" {
		t.Errorf("stored result mismatch (-want +got):\n%s", diff)
	}
	v, ok := l.Result.Columns[3].NumericValue()
	assert.True(t, ok)
	assert.Equal(t, 27, v)
}

// ignoreTimestamp skips search_timestamp, which BuildResult takes from the
// wall clock.
var ignoreTimestamp = cmp.FilterPath(func(p cmp.Path) bool {
	return p.String() == "Timestamp"
}, cmp.Ignore())

func TestListLookups_Limit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for range 3 {
		_, err := db.RecordLookup(ctx, "TXN123", "portal", foundResult())
		require.NoError(t, err)
	}

	got, err := db.ListLookups(ctx, "TXN123", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEnvironmentCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.RecordLookup(ctx, "A", "portal", foundResult())
	require.NoError(t, err)
	_, err = db.RecordLookup(ctx, "B", "portal", foundResult())
	require.NoError(t, err)
	_, err = db.RecordLookup(ctx, "C", "portal", bpm.NotFoundResult())
	require.NoError(t, err)

	counts, err := db.EnvironmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[bpm.Environment]int{
		bpm.EnvironmentBUAT:    2,
		bpm.EnvironmentUnknown: 1,
	}, counts)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.RecordLookup(context.Background(), "TXN1", "portal", foundResult())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.ListLookups(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
