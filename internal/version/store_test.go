package version

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository/memory"
)

func newTestDB() *memory.Database {
	return memory.NewDatabase(memory.NewStore())
}

func horizon() (time.Time, time.Time) {
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 6)
}

func TestAllocateVersion_StartsAtOneAndIncrements(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()

	v1, err := store.AllocateVersion(context.Background(), start, end, "first", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Number)
	assert.Equal(t, entity.VersionStatusDraft, v1.Status)

	v2, err := store.AllocateVersion(context.Background(), start, end, "second", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Number)
}

func TestPersist_ReplacesExistingAssignments(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()
	v, err := store.AllocateVersion(context.Background(), start, end, "", nil)
	require.NoError(t, err)

	first := []*entity.Assignment{{ID: uuid.New(), Version: v.Number, EmployeeID: uuid.New(), Date: start}}
	require.NoError(t, store.Persist(context.Background(), v.Number, first))

	got, err := db.Assignments().GetByVersion(context.Background(), v.Number)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	second := []*entity.Assignment{{ID: uuid.New(), Version: v.Number, EmployeeID: uuid.New(), Date: start}}
	require.NoError(t, store.Persist(context.Background(), v.Number, second))

	got, err = db.Assignments().GetByVersion(context.Background(), v.Number)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second[0].ID, got[0].ID)
}

func TestSetStatus_DraftToPublishedToArchived(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()
	v, err := store.AllocateVersion(context.Background(), start, end, "", nil)
	require.NoError(t, err)

	require.NoError(t, store.SetStatus(context.Background(), v.Number, entity.VersionStatusPublished))
	got, err := db.Versions().GetByNumber(context.Background(), v.Number)
	require.NoError(t, err)
	assert.Equal(t, entity.VersionStatusPublished, got.Status)

	require.NoError(t, store.SetStatus(context.Background(), v.Number, entity.VersionStatusArchived))
	got, err = db.Versions().GetByNumber(context.Background(), v.Number)
	require.NoError(t, err)
	assert.Equal(t, entity.VersionStatusArchived, got.Status)
}

func TestSetStatus_RejectsInvalidTransition(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()
	v, err := store.AllocateVersion(context.Background(), start, end, "", nil)
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(context.Background(), v.Number, entity.VersionStatusArchived))

	err = store.SetStatus(context.Background(), v.Number, entity.VersionStatusPublished)
	require.Error(t, err)
	var invalidErr *InvalidStatusError
	require.ErrorAs(t, err, &invalidErr)
}

func TestDuplicate_CopiesAssignmentsUnderNewVersion(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()
	src, err := store.AllocateVersion(context.Background(), start, end, "source", nil)
	require.NoError(t, err)

	empA, empB := uuid.New(), uuid.New()
	original := []*entity.Assignment{
		{ID: uuid.New(), Version: src.Number, EmployeeID: empA, Date: start},
		{ID: uuid.New(), Version: src.Number, EmployeeID: empB, Date: start.AddDate(0, 0, 1)},
	}
	require.NoError(t, store.Persist(context.Background(), src.Number, original))

	dup, err := store.Duplicate(context.Background(), src.Number, "copy")
	require.NoError(t, err)
	require.NotEqual(t, src.Number, dup.Number)
	assert.Equal(t, src.Number, *dup.BaseVersion)

	copied, err := db.Assignments().GetByVersion(context.Background(), dup.Number)
	require.NoError(t, err)
	require.Len(t, copied, 2)

	seen := map[uuid.UUID]bool{}
	for _, a := range copied {
		assert.Equal(t, dup.Number, a.Version)
		assert.False(t, seen[a.ID], "duplicated assignment ids must be unique")
		seen[a.ID] = true
	}

	originalAssignments, err := db.Assignments().GetByVersion(context.Background(), src.Number)
	require.NoError(t, err)
	assert.Len(t, originalAssignments, 2, "duplicating must not mutate the source version")
}

func TestDelete_RefusesPublishedWithoutForce(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()
	v, err := store.AllocateVersion(context.Background(), start, end, "", nil)
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(context.Background(), v.Number, entity.VersionStatusPublished))

	err = store.Delete(context.Background(), v.Number, true, false)
	require.Error(t, err)
	var pubErr *PublishedDeleteError
	require.ErrorAs(t, err, &pubErr)

	require.NoError(t, store.Delete(context.Background(), v.Number, true, true))
	_, err = db.Versions().GetByNumber(context.Background(), v.Number)
	require.Error(t, err)
}

func TestAcquireHorizon_RejectsOverlap(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()

	release, err := store.AcquireHorizon(start, end)
	require.NoError(t, err)

	_, err = store.AcquireHorizon(start.AddDate(0, 0, 2), end.AddDate(0, 0, 2))
	require.Error(t, err)
	var concErr *ConcurrentGenerationError
	require.ErrorAs(t, err, &concErr)

	release()

	_, err = store.AcquireHorizon(start, end)
	require.NoError(t, err)
}

func TestAcquireHorizon_AllowsDisjointHorizons(t *testing.T) {
	db := newTestDB()
	store := New(db)
	start, end := horizon()

	release, err := store.AcquireHorizon(start, end)
	require.NoError(t, err)
	defer release()

	_, err = store.AcquireHorizon(end.AddDate(0, 0, 1), end.AddDate(0, 0, 8))
	require.NoError(t, err)
}
