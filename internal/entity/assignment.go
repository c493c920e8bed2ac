package entity

import "github.com/retailshift/scheduler/internal/timeutil"

// Assignment is a single (employee, shift, date) pairing produced by the
// core. Assignments are immutable once their version is published;
// ShiftTemplateID is nil for placeholder rows emitted when
// create_empty_schedules is requested.
type Assignment struct {
	ID                           AssignmentID
	Version                      int
	EmployeeID                   EmployeeID
	ShiftTemplateID              *ShiftTemplateID
	Date                         Date
	Start                        timeutil.TimeOfDay
	End                          timeutil.TimeOfDay
	BreakMinutes                 int
	Status                       AssignmentStatus
	AvailabilityCategoryAtAssign AvailabilityCategory
	Notes                        string
	CreatedAt                    DateTime
}

// Duration returns the assignment's worked hours, net of its break.
func (a *Assignment) Duration() float64 {
	return a.GrossDuration() - float64(a.BreakMinutes)/60.0
}

// GrossDuration returns the assignment's shift-clock duration (end minus
// start, break included), the same "duration" §3/§4.4 define on a
// ShiftTemplate and compare against the daily/weekly hour caps.
func (a *Assignment) GrossDuration() float64 {
	return timeutil.Duration(a.Start, a.End).Hours()
}

// IsPlaceholder reports whether this is an empty-schedule placeholder row
// rather than a real shift assignment.
func (a *Assignment) IsPlaceholder() bool {
	return a.Status == AssignmentStatusPlaceholder || a.ShiftTemplateID == nil
}

// StartDateTime combines Date and Start into a full datetime, the form the
// constraint checker operates on.
func (a *Assignment) StartDateTime() DateTime {
	return timeutil.CombineDateTime(a.Date, a.Start)
}

// EndDateTime combines Date and End into a full datetime, adding a day when
// the shift wraps past midnight.
func (a *Assignment) EndDateTime() DateTime {
	end := timeutil.CombineDateTime(a.Date, a.End)
	if a.End <= a.Start {
		end = end.AddDate(0, 0, 1)
	}
	return end
}
