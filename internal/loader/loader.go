// Package loader implements the Resource Loader: it assembles a Snapshot of
// every resource the Generator Orchestrator needs for one horizon, and
// normalizes the loosely-typed shapes a spreadsheet importer or hand-edited
// settings table might produce. Grounded on the teacher's
// internal/service/schedule_orchestrator.go "load everything up front, fail
// fast on the essentials" shape.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/retailshift/scheduler/internal/validation"
)

// Kind tags why a load failed.
type Kind string

const (
	KindUnreachable        Kind = "DB_UNREACHABLE"
	KindNoEmployees        Kind = "NO_ACTIVE_EMPLOYEES"
	KindNoTemplates        Kind = "NO_SHIFT_TEMPLATES"
	KindNoCoverage         Kind = "NO_COVERAGE_ROWS"
	KindIntervalMisaligned Kind = "INTERVAL_MISALIGNED"
)

// LoadError is returned by Load for any of the fatal conditions in §4.1.
type LoadError struct {
	Kind Kind
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("loader: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("loader: %s", e.Kind)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Snapshot is the value object the Generator Orchestrator consumes. Only
// Absences are filtered to the horizon; Employees holds the active roster,
// and ShiftTemplates, CoverageRequirements and Availability hold every row
// the repository lists.
type Snapshot struct {
	HorizonStart entity.Date
	HorizonEnd   entity.Date

	Employees            []*entity.Employee
	ShiftTemplates       []*entity.ShiftTemplate
	CoverageRequirements []*entity.CoverageRequirement
	Absences             []*entity.Absence
	Availability         []*entity.Availability
	Settings             entity.Settings

	Warnings *validation.Result
}

// Load builds a Snapshot for [horizonStart, horizonEnd]. Fatal conditions
// (unreachable store, zero active employees, zero templates, zero coverage
// rows, misaligned interval granularity) return a *LoadError; everything
// else is collected as a non-fatal warning on the returned Snapshot.
func Load(ctx context.Context, db repository.Database, horizonStart, horizonEnd entity.Date) (*Snapshot, error) {
	employees, err := db.Employees().ListActive(ctx)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}
	if len(employees) == 0 {
		return nil, &LoadError{Kind: KindNoEmployees}
	}

	templates, err := db.ShiftTemplates().ListAll(ctx)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}
	if len(templates) == 0 {
		return nil, &LoadError{Kind: KindNoTemplates}
	}

	coverage, err := db.CoverageRequirements().ListAll(ctx)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}
	if len(coverage) == 0 {
		return nil, &LoadError{Kind: KindNoCoverage}
	}

	absences, err := db.Absences().ListIntersecting(ctx, horizonStart, horizonEnd)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}

	availability, err := db.Availability().ListAll(ctx)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}

	settings, err := db.Settings().Load(ctx)
	if err != nil {
		return nil, &LoadError{Kind: KindUnreachable, Err: err}
	}

	if err := checkIntervalAlignment(settings.IntervalMinutes, coverage); err != nil {
		return nil, err
	}

	warnings := validation.NewResult()
	warnWeekdaysWithoutCoverage(warnings, coverage)
	warnEmptyActiveDays(warnings, templates)

	return &Snapshot{
		HorizonStart:         horizonStart,
		HorizonEnd:           horizonEnd,
		Employees:            employees,
		ShiftTemplates:       templates,
		CoverageRequirements: coverage,
		Absences:             absences,
		Availability:         availability,
		Settings:             settings,
		Warnings:             warnings,
	}, nil
}

// checkIntervalAlignment rejects a load whose interval granularity does not
// evenly divide every coverage row's length (§9: "Pick a granularity that
// divides every coverage row's length; reject loads where it does not" --
// a misaligned granularity silently masks sub-interval needs rather than
// merely producing a cosmetic warning, so this is fatal like the other
// §4.1 conditions).
func checkIntervalAlignment(intervalMinutes int, coverage []*entity.CoverageRequirement) error {
	if intervalMinutes <= 0 {
		intervalMinutes = entity.DefaultSettings().IntervalMinutes
	}
	for _, c := range coverage {
		length := int(timeutil.Duration(c.Start, c.End).Minutes())
		if length <= 0 || length%intervalMinutes != 0 {
			return &LoadError{Kind: KindIntervalMisaligned, Err: fmt.Errorf(
				"coverage requirement %s (day %d, %s-%s, %dm) is not a multiple of interval_minutes=%d",
				c.ID, c.DayIndex, c.Start, c.End, length, intervalMinutes)}
		}
	}
	return nil
}

func warnWeekdaysWithoutCoverage(result *validation.Result, coverage []*entity.CoverageRequirement) {
	covered := make(map[int]bool)
	for _, c := range coverage {
		covered[c.DayIndex] = true
	}
	for weekday := 0; weekday < 7; weekday++ {
		if !covered[weekday] {
			result.AddWarning(validation.CodeWeekdayNoCoverage,
				fmt.Sprintf("weekday %d has no coverage requirements", weekday))
		}
	}
}

func warnEmptyActiveDays(result *validation.Result, templates []*entity.ShiftTemplate) {
	for _, t := range templates {
		if len(t.ActiveDays) == 0 {
			result.AddWarning(validation.CodeEmptyActiveDays,
				fmt.Sprintf("shift template %q has no active days", t.Name))
		}
	}
}

// NormalizeActiveDays accepts the shapes an operator-facing import might
// produce — a []int, a JSON-encoded list string, a comma-separated string,
// or a map[string]bool keyed by weekday index — and returns the canonical
// WeekdaySet. A value outside [0,6] returns an error, and so do unrecognized
// shapes, rather than silently producing an empty set.
func NormalizeActiveDays(raw interface{}) (entity.WeekdaySet, error) {
	switch v := raw.(type) {
	case entity.WeekdaySet:
		return v, nil
	case []int:
		return buildWeekdaySet(v)
	case []interface{}:
		days := make([]int, 0, len(v))
		for _, item := range v {
			d, err := toWeekdayInt(item)
			if err != nil {
				return nil, err
			}
			days = append(days, d)
		}
		return buildWeekdaySet(days)
	case map[string]interface{}:
		var days []int
		for key, enabled := range v {
			on, ok := enabled.(bool)
			if !ok || !on {
				continue
			}
			d, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("loader: active_days key %q is not an integer: %w", key, err)
			}
			days = append(days, d)
		}
		return buildWeekdaySet(days)
	case map[int]bool:
		var days []int
		for d, on := range v {
			if on {
				days = append(days, d)
			}
		}
		return buildWeekdaySet(days)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return entity.NewWeekdaySet(), nil
		}
		if strings.HasPrefix(trimmed, "[") {
			var ints []int
			if err := json.Unmarshal([]byte(trimmed), &ints); err != nil {
				return nil, fmt.Errorf("loader: active_days JSON %q: %w", trimmed, err)
			}
			return buildWeekdaySet(ints)
		}
		var days []int
		for _, part := range strings.Split(trimmed, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("loader: active_days segment %q: %w", part, err)
			}
			days = append(days, d)
		}
		return buildWeekdaySet(days)
	default:
		return nil, fmt.Errorf("loader: unsupported active_days shape %T", raw)
	}
}

func toWeekdayInt(item interface{}) (int, error) {
	switch n := item.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("loader: unsupported active_days element %T", item)
	}
}

func buildWeekdaySet(days []int) (entity.WeekdaySet, error) {
	set := entity.NewWeekdaySet()
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("loader: weekday %d out of range [0,6]", d)
		}
		set[d] = true
	}
	return set, nil
}

// NormalizeTimeOfDay accepts "HH:MM", "HH:MM:SS", or an already-parsed
// timeutil.TimeOfDay and returns the canonical minute-precision value.
func NormalizeTimeOfDay(raw interface{}) (timeutil.TimeOfDay, error) {
	switch v := raw.(type) {
	case timeutil.TimeOfDay:
		return v, nil
	case string:
		return timeutil.Parse(v)
	default:
		return 0, fmt.Errorf("loader: unsupported time-of-day shape %T", raw)
	}
}
