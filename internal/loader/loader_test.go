package loader

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository/memory"
	"github.com/retailshift/scheduler/internal/timeutil"
)

func seedDatabase(t *testing.T) *memory.Database {
	t.Helper()
	store := memory.NewStore()
	db := memory.NewDatabase(store)
	ctx := context.Background()

	require.NoError(t, db.Employees().Create(ctx, &entity.Employee{
		ID: uuid.New(), Name: "Ada", Group: entity.GroupFullTime, IsActive: true, ContractedHours: 40,
	}))
	require.NoError(t, db.ShiftTemplates().Create(ctx, &entity.ShiftTemplate{
		ID: uuid.New(), Name: "Open", Start: timeutil.MustParse("08:00"), End: timeutil.MustParse("16:00"),
		Category: entity.ShiftTypeEarly, ActiveDays: entity.NewWeekdaySet(0, 1, 2, 3, 4, 5, 6),
	}))
	require.NoError(t, db.CoverageRequirements().Create(ctx, &entity.CoverageRequirement{
		ID: uuid.New(), DayIndex: 0, Start: timeutil.MustParse("08:00"), End: timeutil.MustParse("16:00"),
		MinEmployees: 1, MaxEmployees: 2,
	}))
	return db
}

func TestLoad_Success(t *testing.T) {
	db := seedDatabase(t)
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	snap, err := Load(context.Background(), db, start, end)
	require.NoError(t, err)
	assert.Len(t, snap.Employees, 1)
	assert.Len(t, snap.ShiftTemplates, 1)
	assert.Len(t, snap.CoverageRequirements, 1)
	assert.True(t, snap.Warnings.HasWarnings(), "weekdays 1-6 have no coverage")
}

func TestLoad_FatalIntervalMisaligned(t *testing.T) {
	db := seedDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.CoverageRequirements().Create(ctx, &entity.CoverageRequirement{
		ID: uuid.New(), DayIndex: 1, Start: timeutil.MustParse("08:00"), End: timeutil.MustParse("08:45"),
		MinEmployees: 1, MaxEmployees: 2,
	}))

	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	_, err := Load(ctx, db, start, start.AddDate(0, 0, 6))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindIntervalMisaligned, loadErr.Kind, "45m coverage row is not a multiple of the default 60m interval")
}

func TestLoad_FatalNoEmployees(t *testing.T) {
	db := memory.NewDatabase(memory.NewStore())
	_, err := Load(context.Background(), db, time.Now(), time.Now())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, KindNoEmployees, loadErr.Kind)
}

func TestNormalizeActiveDays(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want []int
	}{
		{"int slice", []int{0, 2, 4}, []int{0, 2, 4}},
		{"json string", `[1,3,5]`, []int{1, 3, 5}},
		{"csv string", "0, 1, 2", []int{0, 1, 2}},
		{"bool map", map[string]interface{}{"0": true, "1": false, "2": true}, []int{0, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := NormalizeActiveDays(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, set.Sorted())
		})
	}
}

func TestNormalizeActiveDays_OutOfRange(t *testing.T) {
	_, err := NormalizeActiveDays([]int{7})
	assert.Error(t, err)
}

func TestNormalizeTimeOfDay(t *testing.T) {
	tod, err := NormalizeTimeOfDay("14:30")
	require.NoError(t, err)
	assert.Equal(t, timeutil.TimeOfDay(14*60+30), tod)
}
