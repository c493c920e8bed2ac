package distribution

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/retailshift/scheduler/internal/availability"
	"github.com/retailshift/scheduler/internal/constraint"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

// Rejection records why one candidate was passed over, surfaced in
// COVERAGE_SHORTFALL warnings (§7: "the reasons the top-n candidates were
// rejected").
type Rejection struct {
	EmployeeID entity.EmployeeID
	Score      float64
	Reason     string
	Violations []constraint.Violation
}

// Manager is the Distribution Manager: given a target interval, it scores
// and selects at most one (employee, template) candidate per call. The
// Generator Orchestrator calls SelectOne repeatedly until the interval's
// need is satisfied or no feasible candidate remains.
type Manager struct {
	settings entity.Settings
}

// New constructs a Manager bound to the run's settings.
func New(settings entity.Settings) *Manager {
	return &Manager{settings: settings}
}

// SelectParams bundles one interval's selection context.
type SelectParams struct {
	Date          time.Time
	IntervalStart timeutil.TimeOfDay
	Need          Need
	DayNeeds      map[timeutil.TimeOfDay]Need
	Templates     []*entity.ShiftTemplate
	Employees     []*entity.Employee
	Resolver      *availability.Resolver
}

// candidate is one scored, not-yet-validated (employee, template) pair.
type candidate struct {
	employee *entity.Employee
	template *entity.ShiftTemplate
	score    float64
}

// SelectOne picks the single best feasible (employee, template) pair for
// the target interval, recording it into state and returning the resulting
// Assignment. When no feasible candidate exists, it returns (nil,
// rejections, false) so the caller can emit a COVERAGE_SHORTFALL warning.
func (m *Manager) SelectOne(params SelectParams, state *State) (*entity.Assignment, []Rejection, bool) {
	candidates := m.enumerate(params, state)
	if len(candidates) == 0 {
		return nil, nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return lessCandidate(candidates[i], candidates[j], state)
	})

	var rejections []Rejection
	for _, c := range candidates {
		newStart := timeutil.CombineDateTime(params.Date, c.template.Start)
		newEnd := timeutil.CombineDateTime(params.Date, c.template.End)
		if c.template.End <= c.template.Start {
			newEnd = newEnd.AddDate(0, 0, 1)
		}

		violations := constraint.Check(c.employee, newStart, newEnd, state.PriorAssignments(c.employee.ID), m.settings)
		if len(violations) > 0 {
			rejections = append(rejections, Rejection{
				EmployeeID: c.employee.ID,
				Score:      c.score,
				Reason:     "constraint violation",
				Violations: violations,
			})
			continue
		}

		availCat := params.Resolver.CategoryFor(c.employee.ID, params.Date, params.IntervalStart)
		assignment := &entity.Assignment{
			ID:                           uuid.New(),
			EmployeeID:                   c.employee.ID,
			ShiftTemplateID:              templateIDPtr(c.template.ID),
			Date:                         dateOnly(params.Date),
			Start:                        c.template.Start,
			End:                          c.template.End,
			BreakMinutes:                 c.template.BreakMinutes(),
			Status:                       entity.AssignmentStatusAssigned,
			AvailabilityCategoryAtAssign: availCat,
			CreatedAt:                    entity.Now(),
		}
		state.Record(assignment, c.employee, c.template, m.settings.IntervalMinutes)
		return assignment, rejections, true
	}

	return nil, rejections, false
}

// TryAssign validates and, if accepted, records an externally-proposed
// (employee, template) pair for the target interval. It is used by the
// Generator Orchestrator's optional candidate source path (internal/llm):
// a proposal is never trusted outright, it still runs through the same
// eligibility and Constraint Checker gates as an internally scored
// candidate.
func (m *Manager) TryAssign(params SelectParams, employeeID entity.EmployeeID, templateID entity.ShiftTemplateID, state *State) (*entity.Assignment, []constraint.Violation, bool) {
	var emp *entity.Employee
	for _, e := range params.Employees {
		if e.ID == employeeID {
			emp = e
			break
		}
	}
	var tpl *entity.ShiftTemplate
	for _, t := range params.Templates {
		if t.ID == templateID {
			tpl = t
			break
		}
	}
	if emp == nil || tpl == nil || !emp.IsActive || emp.IsDeleted() {
		return nil, nil, false
	}
	weekday := timeutil.Weekday(params.Date)
	if !tpl.ActiveDays.Contains(weekday) || !timeutil.Within(params.IntervalStart, tpl.Start, tpl.End) {
		return nil, nil, false
	}
	if state.IsAssigned(params.Date, params.IntervalStart, emp.ID) {
		return nil, nil, false
	}
	if m.wouldExceedCapacity(params, tpl, state) {
		return nil, nil, false
	}
	for _, ivalStart := range CoveredIntervals(tpl, params.Date, m.settings.IntervalMinutes) {
		if state.IsAssigned(params.Date, ivalStart, emp.ID) {
			return nil, nil, false
		}
	}

	newStart := timeutil.CombineDateTime(params.Date, tpl.Start)
	newEnd := timeutil.CombineDateTime(params.Date, tpl.End)
	if tpl.End <= tpl.Start {
		newEnd = newEnd.AddDate(0, 0, 1)
	}
	violations := constraint.Check(emp, newStart, newEnd, state.PriorAssignments(emp.ID), m.settings)
	if len(violations) > 0 {
		return nil, violations, false
	}

	availCat := params.Resolver.CategoryFor(emp.ID, params.Date, params.IntervalStart)
	assignment := &entity.Assignment{
		ID:                           uuid.New(),
		EmployeeID:                   emp.ID,
		ShiftTemplateID:              templateIDPtr(tpl.ID),
		Date:                         dateOnly(params.Date),
		Start:                        tpl.Start,
		End:                          tpl.End,
		BreakMinutes:                 tpl.BreakMinutes(),
		Status:                       entity.AssignmentStatusAssigned,
		AvailabilityCategoryAtAssign: availCat,
		CreatedAt:                    entity.Now(),
	}
	state.Record(assignment, emp, tpl, m.settings.IntervalMinutes)
	return assignment, nil, true
}

// enumerate builds the scored candidate list for one interval: every
// active employee crossed with every template that is a candidate for this
// (date, interval), excluding employees already occupying the interval, or
// any interval the template covers, and candidates scoring below the floor.
func (m *Manager) enumerate(params SelectParams, state *State) []candidate {
	weekday := timeutil.Weekday(params.Date)
	var eligible []*entity.ShiftTemplate
	for _, tpl := range params.Templates {
		if !tpl.ActiveDays.Contains(weekday) {
			continue
		}
		if !timeutil.Within(params.IntervalStart, tpl.Start, tpl.End) {
			continue
		}
		eligible = append(eligible, tpl)
	}

	var out []candidate
	for _, emp := range params.Employees {
		if !emp.IsActive || emp.IsDeleted() {
			continue
		}
		if state.IsAssigned(params.Date, params.IntervalStart, emp.ID) {
			continue
		}
	tplLoop:
		for _, tpl := range eligible {
			if m.wouldExceedCapacity(params, tpl, state) {
				continue
			}
			for _, ivalStart := range CoveredIntervals(tpl, params.Date, m.settings.IntervalMinutes) {
				if state.IsAssigned(params.Date, ivalStart, emp.ID) {
					continue tplLoop
				}
			}
			availCat := params.Resolver.CategoryFor(emp.ID, params.Date, params.IntervalStart)
			s := Score(ScoreInputs{
				Employee:      emp,
				Template:      tpl,
				Date:          params.Date,
				IntervalStart: params.IntervalStart,
				AvailCategory: availCat,
				Need:          params.Need,
				DayNeeds:      params.DayNeeds,
				Settings:      m.settings,
			}, state)
			if s < scoreFloor {
				continue
			}
			out = append(out, candidate{employee: emp, template: tpl, score: s})
		}
	}
	return out
}

// wouldExceedCapacity reports whether assigning tpl on params.Date would push
// any interval it spans -- not just params.IntervalStart, the one currently
// being filled -- past that interval's own MaxEmployees. A shift recorded for
// an earlier interval increments every interval it covers (State.Record), so
// without this check a later interval with a lower cap can be pushed over by
// spillover from a shift nobody evaluated against it.
func (m *Manager) wouldExceedCapacity(params SelectParams, tpl *entity.ShiftTemplate, state *State) bool {
	for _, ivalStart := range CoveredIntervals(tpl, params.Date, m.settings.IntervalMinutes) {
		need, ok := params.DayNeeds[ivalStart]
		if !ok {
			continue
		}
		if state.CurrentCount(params.Date, ivalStart) >= need.MaxEmployees {
			return true
		}
	}
	return false
}

// lessCandidate implements the tie-break order: higher score first, then
// lower already-assigned weekly hours, then lower total shifts this run,
// then stable employee id order.
func lessCandidate(a, b candidate, state *State) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	aHours, bHours := state.WeeklyHours(a.employee.ID), state.WeeklyHours(b.employee.ID)
	if aHours != bHours {
		return aHours < bHours
	}
	aShifts, bShifts := state.TotalShifts(a.employee.ID), state.TotalShifts(b.employee.ID)
	if aShifts != bShifts {
		return aShifts < bShifts
	}
	return a.employee.ID.String() < b.employee.ID.String()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func templateIDPtr(id entity.ShiftTemplateID) *entity.ShiftTemplateID {
	return &id
}
