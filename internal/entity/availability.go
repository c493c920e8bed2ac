package entity

import "time"

// Availability is an explicit weekly pattern record: this employee has the
// given category at this day-of-week and hour. Records with no match fall
// back to AVAILABLE (see internal/availability).
type Availability struct {
	ID         AvailabilityID
	EmployeeID EmployeeID
	DayOfWeek  int // 0=Monday .. 6=Sunday
	Hour       int // 0..23, matches timeutil.TimeOfDay.Hour()
	Category   AvailabilityCategory
	CreatedAt  DateTime
	UpdatedAt  DateTime
}

// Absence masks availability to UNAVAILABLE for a contiguous date range
// (vacation, sick leave, etc). Absences are the strongest statement in the
// resolution order: they always win over explicit weekly patterns.
type Absence struct {
	ID         AbsenceID
	EmployeeID EmployeeID
	StartDate  Date
	EndDate    Date
	Reason     string
	CreatedAt  DateTime
}

// Covers reports whether date falls within the absence's inclusive range.
func (a *Absence) Covers(date Date) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(a.StartDate)) && !d.After(dateOnly(a.EndDate))
}

func dateOnly(t Date) Date {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
