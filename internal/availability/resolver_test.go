package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestResolver_AbsenceWinsOverExplicit(t *testing.T) {
	emp := uuid.New()
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // Monday

	absences := []entity.Absence{{EmployeeID: emp, StartDate: date, EndDate: date}}
	records := []entity.Availability{{EmployeeID: emp, DayOfWeek: 0, Hour: 9, Category: entity.AvailabilityFixed}}

	r := New(NewIndex(absences, records))
	got := r.CategoryFor(emp, date, timeutil.MustParse("09:00"))
	assert.Equal(t, entity.AvailabilityUnavailable, got)
}

func TestResolver_ExplicitOverridesImplicit(t *testing.T) {
	emp := uuid.New()
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	records := []entity.Availability{{EmployeeID: emp, DayOfWeek: 0, Hour: 9, Category: entity.AvailabilityPreferred}}
	r := New(NewIndex(nil, records))

	assert.Equal(t, entity.AvailabilityPreferred, r.CategoryFor(emp, date, timeutil.MustParse("09:00")))
	// No record for hour 14: falls back to implicit AVAILABLE.
	assert.Equal(t, entity.AvailabilityAvailable, r.CategoryFor(emp, date, timeutil.MustParse("14:00")))
}

func TestResolver_NoDataIsAvailable(t *testing.T) {
	emp := uuid.New()
	r := New(NewIndex(nil, nil))
	got := r.CategoryFor(emp, time.Now(), timeutil.MustParse("09:00"))
	assert.Equal(t, entity.AvailabilityAvailable, got)
}
