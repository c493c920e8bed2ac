package constraint

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasKind(violations []Violation, kind entity.ViolationKind) bool {
	for _, v := range violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func atHour(h int) timeutil.TimeOfDay {
	return timeutil.TimeOfDay(h * 60)
}

func TestCheck_S1_OvernightShiftTriggersMinRestBefore(t *testing.T) {
	emp := &entity.Employee{ID: uuid.New(), Group: entity.GroupFullTime}
	settings := entity.DefaultSettings()
	settings.MinRestHours = 11

	prior := []*entity.Assignment{
		{EmployeeID: emp.ID, Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Start: atHour(22), End: atHour(6)},
	}

	newStart := time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, 1, 6, 16, 0, 0, 0, time.UTC)

	violations := Check(emp, newStart, newEnd, prior, settings)
	require.True(t, hasKind(violations, entity.ViolationMinRestBefore), "expected MIN_REST_BEFORE, got %+v", violations)
}

func TestCheck_S2_ContractedHoursCap(t *testing.T) {
	emp := &entity.Employee{ID: uuid.New(), Group: entity.GroupPartTime, ContractedHours: 20}
	settings := entity.DefaultSettings()
	settings.ContractedHoursLimitFactor = 1.2
	settings.EnforceRestPeriods = false
	settings.MaxDailyHoursPerGroup = map[entity.Group]float64{entity.GroupPartTime: 8}

	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mkShift := func(day int, startHour int) *entity.Assignment {
		d := monday.AddDate(0, 0, day)
		return &entity.Assignment{
			EmployeeID: emp.ID,
			Date:       d,
			Start:      atHour(startHour),
			End:        atHour(startHour + 8),
		}
	}

	prior := []*entity.Assignment{mkShift(0, 8), mkShift(1, 8)}
	thirdStart := monday.AddDate(0, 0, 2).Add(8 * time.Hour)
	thirdEnd := thirdStart.Add(8 * time.Hour)
	violations := Check(emp, thirdStart, thirdEnd, prior, settings)
	assert.False(t, hasKind(violations, entity.ViolationMaxWeeklyHoursContract), "third 8h shift should reach exactly 24h and be accepted")

	prior = append(prior, mkShift(2, 8))
	fourthStart := monday.AddDate(0, 0, 3).Add(8 * time.Hour)
	fourthEnd := fourthStart.Add(8 * time.Hour)
	violations = Check(emp, fourthStart, fourthEnd, prior, settings)
	assert.True(t, hasKind(violations, entity.ViolationMaxWeeklyHoursContract), "fourth 8h shift should exceed the 24h contract cap")
}

func TestCheck_WeeklyHoursSumUsesGrossDurationForPriorAndNewShiftAlike(t *testing.T) {
	// Three prior 8h shifts each carrying a 30-minute break (net 7.5h) plus
	// a fourth 8h shift with no break: if priors were summed net while the
	// new shift counts gross, the total would read 30.5h and stay under a
	// 31h cap; summed consistently on gross duration it totals 32h, over cap.
	emp := &entity.Employee{ID: uuid.New(), Group: entity.GroupFullTime, ContractedHours: 0}
	settings := entity.DefaultSettings()
	settings.EnforceRestPeriods = false
	settings.MaxHoursPerGroup = map[entity.Group]float64{entity.GroupFullTime: 31}

	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mkShift := func(day, startHour int) *entity.Assignment {
		return &entity.Assignment{
			EmployeeID: emp.ID, Date: monday.AddDate(0, 0, day),
			Start: atHour(startHour), End: atHour(startHour + 8), BreakMinutes: 30,
		}
	}
	prior := []*entity.Assignment{mkShift(0, 8), mkShift(1, 8), mkShift(2, 8)}

	fourthStart := monday.AddDate(0, 0, 3).Add(8 * time.Hour)
	fourthEnd := fourthStart.Add(8 * time.Hour)
	violations := Check(emp, fourthStart, fourthEnd, prior, settings)
	assert.True(t, hasKind(violations, entity.ViolationMaxWeeklyHoursGroup),
		"32h gross total (3x8h priors + 8h new) should exceed a 31h cap; it would not if priors were summed net of break")
}

func TestCheck_S4_ConsecutiveDays(t *testing.T) {
	emp := &entity.Employee{ID: uuid.New(), Group: entity.GroupFullTime}
	settings := entity.DefaultSettings()
	settings.MaxConsecutiveDays = 3
	settings.EnforceRestPeriods = false

	tue := time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC)
	prior := []*entity.Assignment{
		{EmployeeID: emp.ID, Date: tue, Start: atHour(9), End: atHour(17)},
		{EmployeeID: emp.ID, Date: tue.AddDate(0, 0, 1), Start: atHour(9), End: atHour(17)},
		{EmployeeID: emp.ID, Date: tue.AddDate(0, 0, 2), Start: atHour(9), End: atHour(17)},
	}

	friStart := tue.AddDate(0, 0, 3)
	friEnd := friStart.Add(8 * time.Hour)
	violations := Check(emp, friStart, friEnd, prior, settings)
	assert.True(t, hasKind(violations, entity.ViolationMaxConsecutiveDays))
}

func TestCheck_UnknownEmployee(t *testing.T) {
	violations := Check(nil, time.Now(), time.Now().Add(time.Hour), nil, entity.DefaultSettings())
	require.Len(t, violations, 1)
	assert.Equal(t, entity.ViolationResourceError, violations[0].Kind)
}

func TestCheck_ShiftInvalid(t *testing.T) {
	emp := &entity.Employee{ID: uuid.New()}
	now := time.Now()
	violations := Check(emp, now, now, nil, entity.DefaultSettings())
	require.Len(t, violations, 1)
	assert.Equal(t, entity.ViolationShiftInvalid, violations[0].Kind)
}
