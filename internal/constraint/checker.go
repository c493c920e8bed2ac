// Package constraint implements the Constraint Checker: a pure function
// that validates a prospective assignment against consecutive-day, rest,
// daily-hour, and weekly-hour rules. It consults no global state and is not
// responsible for tie-breaking between candidates; see internal/distribution
// for that.
package constraint

import (
	"fmt"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

// Violation describes a single rule failure. A Violation is not an error in
// the Go sense; it is returned data that causes the Distribution Manager to
// skip a candidate.
type Violation struct {
	Kind     entity.ViolationKind
	Message  string
	Limit    float64
	Observed float64
}

func violation(kind entity.ViolationKind, limit, observed float64, format string, args ...interface{}) Violation {
	return Violation{Kind: kind, Message: fmt.Sprintf(format, args...), Limit: limit, Observed: observed}
}

// Check validates a candidate shift [newStart,newEnd) for employee against
// priorAssignments (every other known assignment for this employee in the
// run, past and future relative to the candidate). An empty return means
// the assignment is acceptable.
func Check(employee *entity.Employee, newStart, newEnd time.Time, priorAssignments []*entity.Assignment, settings entity.Settings) []Violation {
	var violations []Violation

	if employee == nil {
		return []Violation{violation(entity.ViolationResourceError, 0, 0, "employee is unknown")}
	}

	// duration is the shift-clock duration (end minus start, break
	// included) -- the same basis §3/§4.4 use for a ShiftTemplate's
	// duration and for the daily and weekly hour caps below, so the new
	// shift and every prior assignment are compared on equal terms
	// regardless of which one happens to be "new" (S2: three 8h shifts
	// sum to 24h, not 22.5h net of break).
	duration := newEnd.Sub(newStart).Hours()
	if !newEnd.After(newStart) || duration <= 0 {
		violations = append(violations, violation(entity.ViolationShiftInvalid, 0, duration,
			"shift end %s is not after start %s", newEnd, newStart))
		return violations
	}

	if v, ok := checkConsecutiveDays(newStart, priorAssignments, settings); ok {
		violations = append(violations, v)
	}

	if settings.EnforceRestPeriods {
		if v, ok := checkRestBefore(newStart, priorAssignments, settings); ok {
			violations = append(violations, v)
		}
		if v, ok := checkRestAfter(newEnd, priorAssignments, settings); ok {
			violations = append(violations, v)
		}
	}

	if v, ok := checkDailyHours(duration, employee.Group, settings); ok {
		violations = append(violations, v)
	}

	weeklyHours := sumWeeklyHours(newStart, duration, priorAssignments)
	if v, ok := checkWeeklyGroupCap(weeklyHours, employee.Group, settings); ok {
		violations = append(violations, v)
	}
	if v, ok := checkWeeklyContractCap(weeklyHours, employee, settings); ok {
		violations = append(violations, v)
	}

	return violations
}

func checkConsecutiveDays(newStart time.Time, prior []*entity.Assignment, settings entity.Settings) (Violation, bool) {
	worked := map[string]bool{dateKey(newStart): true}
	for _, a := range prior {
		worked[dateKey(a.StartDateTime())] = true
	}

	streak := 1
	cursor := dateOnly(newStart).AddDate(0, 0, -1)
	for worked[dateKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	limit := settings.MaxConsecutiveDays
	if limit <= 0 {
		limit = entity.DefaultSettings().MaxConsecutiveDays
	}
	if streak > limit {
		return violation(entity.ViolationMaxConsecutiveDays, float64(limit), float64(streak),
			"consecutive-day streak of %d exceeds limit %d", streak, limit), true
	}
	return Violation{}, false
}

func checkRestBefore(newStart time.Time, prior []*entity.Assignment, settings entity.Settings) (Violation, bool) {
	var latestPriorEnd *time.Time
	for _, a := range prior {
		end := a.EndDateTime()
		if !end.Before(newStart) {
			continue
		}
		if latestPriorEnd == nil || end.After(*latestPriorEnd) {
			e := end
			latestPriorEnd = &e
		}
	}
	if latestPriorEnd == nil {
		return Violation{}, false
	}
	rest := timeutil.RestBetween(*latestPriorEnd, newStart)
	minRest := settings.MinRestHours
	if minRest <= 0 {
		minRest = entity.DefaultSettings().MinRestHours
	}
	if rest < minRest {
		return violation(entity.ViolationMinRestBefore, minRest, rest,
			"rest before new shift is %.2fh, below minimum %.2fh", rest, minRest), true
	}
	return Violation{}, false
}

func checkRestAfter(newEnd time.Time, prior []*entity.Assignment, settings entity.Settings) (Violation, bool) {
	var earliestNextStart *time.Time
	for _, a := range prior {
		start := a.StartDateTime()
		if !start.After(newEnd) {
			continue
		}
		if earliestNextStart == nil || start.Before(*earliestNextStart) {
			s := start
			earliestNextStart = &s
		}
	}
	if earliestNextStart == nil {
		return Violation{}, false
	}
	rest := timeutil.RestBetween(newEnd, *earliestNextStart)
	minRest := settings.MinRestHours
	if minRest <= 0 {
		minRest = entity.DefaultSettings().MinRestHours
	}
	if rest < minRest {
		return violation(entity.ViolationMinRestAfter, minRest, rest,
			"rest after new shift is %.2fh, below minimum %.2fh", rest, minRest), true
	}
	return Violation{}, false
}

func checkDailyHours(duration float64, group entity.Group, settings entity.Settings) (Violation, bool) {
	cap := settings.MaxDailyHoursFor(group)
	if cap <= 0 {
		cap = entity.DefaultSettings().DefaultMaxDailyHours
	}
	if duration > cap {
		return violation(entity.ViolationMaxDailyHours, cap, duration,
			"shift duration %.2fh exceeds daily cap %.2fh for group %s", duration, cap, group), true
	}
	return Violation{}, false
}

func checkWeeklyGroupCap(weeklyHours float64, group entity.Group, settings entity.Settings) (Violation, bool) {
	cap, configured := settings.MaxWeeklyHoursFor(group)
	if !configured {
		return Violation{}, false
	}
	if weeklyHours > cap {
		return violation(entity.ViolationMaxWeeklyHoursGroup, cap, weeklyHours,
			"weekly hours %.2fh exceed group cap %.2fh for %s", weeklyHours, cap, group), true
	}
	return Violation{}, false
}

func checkWeeklyContractCap(weeklyHours float64, employee *entity.Employee, settings entity.Settings) (Violation, bool) {
	if employee.ContractedHours <= 0 {
		return Violation{}, false
	}
	factor := settings.ContractedHoursLimitFactor
	if factor <= 0 {
		factor = entity.DefaultSettings().ContractedHoursLimitFactor
	}
	cap := employee.ContractedHours * factor
	if weeklyHours > cap {
		return violation(entity.ViolationMaxWeeklyHoursContract, cap, weeklyHours,
			"weekly hours %.2fh exceed contract cap %.2fh (contracted %.2fh x %.2f)",
			weeklyHours, cap, employee.ContractedHours, factor), true
	}
	return Violation{}, false
}

// sumWeeklyHours totals the new shift's (gross) duration plus every prior
// assignment falling in the same Monday-Sunday ISO week as newStart. Prior
// assignments are summed on their gross, shift-clock duration rather than
// Assignment.Duration's break-deducted figure, matching newDuration's basis
// above -- otherwise the same shift would count differently depending on
// whether it is the candidate being checked or an already-recorded prior.
func sumWeeklyHours(newStart time.Time, newDuration float64, prior []*entity.Assignment) float64 {
	weekStart := timeutil.ISOWeekStart(newStart)
	weekEnd := weekStart.AddDate(0, 0, 7)
	total := newDuration
	for _, a := range prior {
		start := a.StartDateTime()
		if !start.Before(weekStart) && start.Before(weekEnd) {
			total += a.GrossDuration()
		}
	}
	return total
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return dateOnly(t).Format("2006-01-02")
}
