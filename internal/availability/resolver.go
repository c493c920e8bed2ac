// Package availability implements the Availability Resolver: deciding, for
// a given employee/date/interval, which of AVAILABLE, PREFERRED, FIXED, or
// UNAVAILABLE applies. Grounded in the teacher's pure-function service style
// (internal/service/coverage/algorithm.go) — no side effects, no I/O.
package availability

import (
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

// Index is a read-only view over absences and explicit availability records
// for a horizon, keyed by employee for lookup by the Resolver. The
// Generator Orchestrator builds one per run from the loaded snapshot.
type Index struct {
	absencesByEmployee      map[entity.EmployeeID][]entity.Absence
	explicitByEmployeeDayHr map[entity.EmployeeID]map[int]map[int]entity.AvailabilityCategory
}

// NewIndex builds an Index from the raw absence and availability rows.
func NewIndex(absences []entity.Absence, records []entity.Availability) *Index {
	idx := &Index{
		absencesByEmployee:      make(map[entity.EmployeeID][]entity.Absence),
		explicitByEmployeeDayHr: make(map[entity.EmployeeID]map[int]map[int]entity.AvailabilityCategory),
	}
	for _, a := range absences {
		idx.absencesByEmployee[a.EmployeeID] = append(idx.absencesByEmployee[a.EmployeeID], a)
	}
	for _, r := range records {
		byDay, ok := idx.explicitByEmployeeDayHr[r.EmployeeID]
		if !ok {
			byDay = make(map[int]map[int]entity.AvailabilityCategory)
			idx.explicitByEmployeeDayHr[r.EmployeeID] = byDay
		}
		byHour, ok := byDay[r.DayOfWeek]
		if !ok {
			byHour = make(map[int]entity.AvailabilityCategory)
			byDay[r.DayOfWeek] = byHour
		}
		byHour[r.Hour] = r.Category
	}
	return idx
}

// Resolver answers category_for(employee, date, interval_start), applying
// the documented resolution order: absence beats explicit pattern beats the
// implicit AVAILABLE default.
type Resolver struct {
	index *Index
}

// New constructs a Resolver over the given Index.
func New(index *Index) *Resolver {
	return &Resolver{index: index}
}

// CategoryFor resolves the availability category for employeeID at the
// given date and interval start time-of-day.
func (r *Resolver) CategoryFor(employeeID entity.EmployeeID, date time.Time, intervalStart timeutil.TimeOfDay) entity.AvailabilityCategory {
	for _, a := range r.index.absencesByEmployee[employeeID] {
		if a.Covers(date) {
			return entity.AvailabilityUnavailable
		}
	}

	weekday := timeutil.Weekday(date)
	hour := intervalStart.Hour()
	if byDay, ok := r.index.explicitByEmployeeDayHr[employeeID]; ok {
		if byHour, ok := byDay[weekday]; ok {
			if cat, ok := byHour[hour]; ok {
				return cat
			}
		}
	}

	return entity.AvailabilityAvailable
}
