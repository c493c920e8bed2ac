package distribution

import (
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

// IntervalKey identifies one (date, interval-start) slot of running state.
type IntervalKey struct {
	DateKey string
	Start   timeutil.TimeOfDay
}

func intervalKey(date time.Time, start timeutil.TimeOfDay) IntervalKey {
	y, m, d := date.Date()
	return IntervalKey{DateKey: time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), Start: start}
}

// IntervalOccupancy is the per-interval slice of the running state: who is
// currently assigned, whether a keyholder is among them, and per-group
// counts, used by scoring and by the need-met check in the orchestrator.
type IntervalOccupancy struct {
	AssignedEmployees map[entity.EmployeeID]bool
	KeyholderPresent  bool
	GroupCounts       map[entity.Group]int
}

func newOccupancy() *IntervalOccupancy {
	return &IntervalOccupancy{
		AssignedEmployees: make(map[entity.EmployeeID]bool),
		GroupCounts:       make(map[entity.Group]int),
	}
}

// State is the Generator Orchestrator's running distribution state for one
// run: exclusively owned by the orchestrator for the run's duration, never
// shared across runs or goroutines (see SPEC_FULL.md §5 concurrency model).
type State struct {
	weeklyHours        map[entity.EmployeeID]float64
	categoryCounts     map[entity.EmployeeID]map[entity.ShiftTypeCategory]int
	totalShiftsThisRun map[entity.EmployeeID]int
	lastAssignedDate   map[entity.EmployeeID]time.Time
	streakLength       map[entity.EmployeeID]int
	priorAssignments   map[entity.EmployeeID][]*entity.Assignment
	intervals          map[IntervalKey]*IntervalOccupancy
}

// NewState builds an empty running state for a fresh generation run.
func NewState() *State {
	return &State{
		weeklyHours:        make(map[entity.EmployeeID]float64),
		categoryCounts:     make(map[entity.EmployeeID]map[entity.ShiftTypeCategory]int),
		totalShiftsThisRun: make(map[entity.EmployeeID]int),
		lastAssignedDate:   make(map[entity.EmployeeID]time.Time),
		streakLength:       make(map[entity.EmployeeID]int),
		priorAssignments:   make(map[entity.EmployeeID][]*entity.Assignment),
		intervals:          make(map[IntervalKey]*IntervalOccupancy),
	}
}

func (s *State) occupancy(date time.Time, start timeutil.TimeOfDay) *IntervalOccupancy {
	key := intervalKey(date, start)
	occ, ok := s.intervals[key]
	if !ok {
		occ = newOccupancy()
		s.intervals[key] = occ
	}
	return occ
}

// CurrentCount returns how many employees are presently assigned to the
// given date/interval.
func (s *State) CurrentCount(date time.Time, start timeutil.TimeOfDay) int {
	return len(s.occupancy(date, start).AssignedEmployees)
}

// HasKeyholder reports whether a keyholder is already present at the given
// date/interval.
func (s *State) HasKeyholder(date time.Time, start timeutil.TimeOfDay) bool {
	return s.occupancy(date, start).KeyholderPresent
}

// GroupCount returns how many employees of the given group are assigned at
// the date/interval.
func (s *State) GroupCount(date time.Time, start timeutil.TimeOfDay, group entity.Group) int {
	return s.occupancy(date, start).GroupCounts[group]
}

// IsAssigned reports whether employeeID is already occupying the
// date/interval slot (an employee cannot be double-booked into the same
// interval by two different shifts).
func (s *State) IsAssigned(date time.Time, start timeutil.TimeOfDay, employeeID entity.EmployeeID) bool {
	return s.occupancy(date, start).AssignedEmployees[employeeID]
}

// WeeklyHours returns the hours (net of break) assigned so far in this run
// for employeeID, summed across every date of the run; the total is not
// split or reset per ISO week.
func (s *State) WeeklyHours(employeeID entity.EmployeeID) float64 {
	return s.weeklyHours[employeeID]
}

// TotalShifts returns the count of shifts assigned to employeeID so far in
// this run, across all dates.
func (s *State) TotalShifts(employeeID entity.EmployeeID) int {
	return s.totalShiftsThisRun[employeeID]
}

// CategoryCount returns how many shifts of the given category employeeID
// has been assigned so far in this run.
func (s *State) CategoryCount(employeeID entity.EmployeeID, category entity.ShiftTypeCategory) int {
	return s.categoryCounts[employeeID][category]
}

// PriorAssignments returns every assignment recorded so far in this run for
// employeeID, the list the Constraint Checker validates new candidates
// against.
func (s *State) PriorAssignments(employeeID entity.EmployeeID) []*entity.Assignment {
	return s.priorAssignments[employeeID]
}

// Record commits an approved assignment into the running state, updating
// every interval the shift covers: occupancy, keyholder presence, group
// counts, weekly hours, category history, and streak bookkeeping.
func (s *State) Record(a *entity.Assignment, employee *entity.Employee, template *entity.ShiftTemplate, granularityMinutes int) {
	s.priorAssignments[employee.ID] = append(s.priorAssignments[employee.ID], a)
	s.totalShiftsThisRun[employee.ID]++
	s.weeklyHours[employee.ID] += a.Duration()

	if s.categoryCounts[employee.ID] == nil {
		s.categoryCounts[employee.ID] = make(map[entity.ShiftTypeCategory]int)
	}
	if template != nil {
		s.categoryCounts[employee.ID][template.Category]++
	}

	if last, ok := s.lastAssignedDate[employee.ID]; ok && dateKey(last) == dateKey(a.Date.AddDate(0, 0, -1)) {
		s.streakLength[employee.ID]++
	} else {
		s.streakLength[employee.ID] = 1
	}
	s.lastAssignedDate[employee.ID] = a.Date

	for _, ivalStart := range CoveredIntervals(template, a.Date, granularityMinutes) {
		occ := s.occupancy(a.Date, ivalStart)
		occ.AssignedEmployees[employee.ID] = true
		if employee.IsKeyholder {
			occ.KeyholderPresent = true
		}
		occ.GroupCounts[employee.Group]++
	}
}

// CoveredIntervals returns every interval-start the given template spans on
// date, at the given granularity, honoring overnight wrap.
func CoveredIntervals(template *entity.ShiftTemplate, date time.Time, granularityMinutes int) []timeutil.TimeOfDay {
	if template == nil {
		return nil
	}
	length := int(timeutil.Duration(template.Start, template.End).Minutes())
	var out []timeutil.TimeOfDay
	for offset := 0; offset < length; offset += granularityMinutes {
		out = append(out, template.Start.AddMinutes(offset))
	}
	return out
}

func dateKey(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
