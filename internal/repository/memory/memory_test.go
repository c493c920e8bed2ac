package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_EmployeeRoundTrip(t *testing.T) {
	db := NewDatabase(NewStore())
	ctx := context.Background()

	emp := &entity.Employee{ID: uuid.New(), Name: "Amara", IsActive: true, Group: entity.GroupFullTime}
	require.NoError(t, db.Employees().Create(ctx, emp))

	got, err := db.Employees().GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amara", got.Name)

	_, err = db.Employees().GetByID(ctx, uuid.New())
	assert.True(t, repository.IsNotFound(err))
}

func TestDatabase_VersionLifecycle(t *testing.T) {
	db := NewDatabase(NewStore())
	ctx := context.Background()

	v := entity.NewVersion(1, time.Now(), time.Now(), nil)
	require.NoError(t, db.Versions().Create(ctx, v))

	err := db.Versions().Create(ctx, v)
	assert.Error(t, err, "duplicate version number should be rejected")

	max, err := db.Versions().GetMaxVersionNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, max)
}

func TestDatabase_AssignmentsByVersion(t *testing.T) {
	db := NewDatabase(NewStore())
	ctx := context.Background()

	a1 := &entity.Assignment{ID: uuid.New(), Version: 1, Date: time.Now()}
	a2 := &entity.Assignment{ID: uuid.New(), Version: 2, Date: time.Now()}
	require.NoError(t, db.Assignments().CreateBatch(ctx, []*entity.Assignment{a1, a2}))

	got, err := db.Assignments().GetByVersion(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a1.ID, got[0].ID)

	require.NoError(t, db.Assignments().DeleteByVersion(ctx, 1))
	got, err = db.Assignments().GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransaction_ScopesAssignmentsAndVersions(t *testing.T) {
	db := NewDatabase(NewStore())
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)

	v := entity.NewVersion(5, time.Now(), time.Now(), nil)
	require.NoError(t, tx.Versions().Create(ctx, v))
	require.NoError(t, tx.Commit())

	got, err := db.Versions().GetByNumber(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Number)
}
