package distribution

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestAvailabilityScore(t *testing.T) {
	assert.Equal(t, availabilityBaseFixed, availabilityScore(entity.AvailabilityFixed))
	assert.Equal(t, availabilityBasePreferred, availabilityScore(entity.AvailabilityPreferred))
	assert.Equal(t, availabilityBaseAvailable, availabilityScore(entity.AvailabilityAvailable))
	assert.True(t, math.IsInf(availabilityScore(entity.AvailabilityUnavailable), -1))
}

func TestKeyholderScore(t *testing.T) {
	kh := &entity.Employee{IsKeyholder: true}
	nonKh := &entity.Employee{IsKeyholder: false}
	need := Need{RequiresKeyholder: true}

	assert.Equal(t, keyholderMatchBonus, keyholderScore(kh, need))
	assert.Equal(t, keyholderMismatchPenalty, keyholderScore(nonKh, need))
	assert.Equal(t, 0.0, keyholderScore(nonKh, Need{RequiresKeyholder: false}))
}

func TestGroupScore(t *testing.T) {
	allowed := Need{AllowedGroups: []entity.Group{entity.GroupFullTime}}
	assert.Equal(t, groupMatchBonus, groupScore(&entity.Employee{Group: entity.GroupFullTime}, allowed))
	assert.Equal(t, groupMismatchPenalty, groupScore(&entity.Employee{Group: entity.GroupPartTime}, allowed))
	assert.Equal(t, groupMissingPenalty, groupScore(&entity.Employee{}, allowed))
	assert.Equal(t, 0.0, groupScore(&entity.Employee{Group: entity.GroupPartTime}, Need{}))
}

func TestDesirabilityPenalty(t *testing.T) {
	weekend := &entity.ShiftTemplate{Category: entity.ShiftTypeWeekend}
	middle := &entity.ShiftTemplate{Category: entity.ShiftTypeMiddle}
	assert.Less(t, desirabilityPenalty(weekend), desirabilityPenalty(middle))
}

func TestHistoryAdjustment(t *testing.T) {
	emp := &entity.Employee{ID: uuid.New()}
	tpl := &entity.ShiftTemplate{Category: entity.ShiftTypeEarly}
	state := NewState()
	first := historyAdjustment(emp, tpl, state)

	state.categoryCounts[emp.ID] = map[entity.ShiftTypeCategory]int{entity.ShiftTypeEarly: 3}
	after := historyAdjustment(emp, tpl, state)
	assert.Less(t, after, first)
}

func TestPreferenceAdjustment(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	prefers := &entity.Employee{PreferredDays: []int{0}}
	avoids := &entity.Employee{AvoidDays: []int{0}}
	neutral := &entity.Employee{}

	settings := entity.DefaultSettings()
	assert.Greater(t, preferenceAdjustment(prefers, monday, settings), 0.0)
	assert.Less(t, preferenceAdjustment(avoids, monday, settings), 0.0)
	assert.Equal(t, 0.0, preferenceAdjustment(neutral, monday, settings))
}

func TestOverstaffingPenalty(t *testing.T) {
	tpl := &entity.ShiftTemplate{Start: timeutil.MustParse("09:00"), End: timeutil.MustParse("11:00")}
	settings := entity.DefaultSettings()
	settings.IntervalMinutes = 60
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	state := NewState()
	need := Need{MaxEmployees: 1}
	// Saturate the 10:00 interval (not the target 09:00 interval).
	state.occupancy(date, timeutil.MustParse("10:00")).AssignedEmployees[uuid.New()] = true

	in := ScoreInputs{
		Template:      tpl,
		Date:          date,
		IntervalStart: timeutil.MustParse("09:00"),
		DayNeeds: map[timeutil.TimeOfDay]Need{
			timeutil.MustParse("09:00"): need,
			timeutil.MustParse("10:00"): need,
		},
		Settings: settings,
	}
	assert.Equal(t, overstaffingPenaltyPerSlot, overstaffingPenalty(in, state))
}
