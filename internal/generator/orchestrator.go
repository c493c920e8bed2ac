// Package generator implements the Generator Orchestrator (§4.6): it loads
// a snapshot, walks the horizon date by date and interval by interval,
// asking the Distribution Manager for candidates and the Constraint
// Checker (via the Manager) to approve them, then hands the result to the
// Version Store for atomic persistence. Grounded on the teacher's
// "collect everything, decide once" orchestration style in
// internal/service/schedule_orchestrator.go, generalized from its 3-phase
// import workflow to a day/interval assignment loop.
package generator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/retailshift/scheduler/internal/availability"
	"github.com/retailshift/scheduler/internal/distribution"
	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/llm"
	"github.com/retailshift/scheduler/internal/loader"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/timeutil"
	"github.com/retailshift/scheduler/internal/validation"
	"github.com/retailshift/scheduler/internal/version"
)

// Options controls one generation run.
type Options struct {
	CreateEmptySchedules bool
	Notes                string
	BaseVersion          *int

	// CandidateSource, if set, is consulted for intervals the greedy
	// heuristic could not fill on its own (§5: external LLM collaborator
	// path). A timeout or error here is recovered as a warning, never
	// fatal, since the heuristic is always the primary assignment source.
	CandidateSource        llm.CandidateSource
	CandidateSourceTimeout time.Duration
}

// Warning codes the orchestrator itself emits (loader-sourced warnings use
// their own codes; see internal/validation).
const (
	CodeCoverageShortfall  = "COVERAGE_SHORTFALL"
	CodeConcurrentRun      = "CONCURRENT_GENERATION"
	CodeCancelled          = "GENERATION_CANCELLED"
	CodeCandidateSourceErr = "CANDIDATE_SOURCE_UNAVAILABLE"
)

// Metrics summarizes one run for callers (§4.6: "run metrics").
type Metrics struct {
	TotalAssignments    int
	PerEmployeeHours    map[entity.EmployeeID]float64
	PerCategoryCounts   map[entity.ShiftTypeCategory]int
	ConstraintRejections int
	FairnessScore       float64 // lower stdev of per-employee hours => higher score, see fairnessScore
}

// Result is the GenerationResult returned across the core's public
// boundary (§7: "the core never throws ... all exits return a
// GenerationResult").
type Result struct {
	Version     *entity.Version
	Assignments []*entity.Assignment
	Warnings    *validation.Result
	Errors      []string
	Metrics     Metrics
}

func emptyResult(errMsg string) *Result {
	return &Result{
		Warnings: validation.NewResult(),
		Errors:   []string{errMsg},
		Metrics:  Metrics{PerEmployeeHours: map[entity.EmployeeID]float64{}, PerCategoryCounts: map[entity.ShiftTypeCategory]int{}},
	}
}

// Generate runs one full generation over [horizonStart, horizonEnd],
// following the six steps of §4.6. A horizon conflict or fatal load error
// returns with Errors populated and no version allocated; a persistence
// error archives the already-allocated version and returns it with Errors
// populated; constraint and coverage issues are recovered locally as
// warnings.
func Generate(ctx context.Context, db repository.Database, store *version.Store, horizonStart, horizonEnd entity.Date, opts Options) *Result {
	release, err := store.AcquireHorizon(horizonStart, horizonEnd)
	if err != nil {
		return emptyResult(err.Error())
	}
	defer release()

	snap, err := loader.Load(ctx, db, horizonStart, horizonEnd)
	if err != nil {
		return emptyResult(err.Error())
	}

	v, err := store.AllocateVersion(ctx, horizonStart, horizonEnd, opts.Notes, opts.BaseVersion)
	if err != nil {
		return emptyResult(fmt.Sprintf("allocate version: %v", err))
	}

	result := &Result{
		Version:  v,
		Warnings: snap.Warnings,
		Metrics: Metrics{
			PerEmployeeHours:  map[entity.EmployeeID]float64{},
			PerCategoryCounts: map[entity.ShiftTypeCategory]int{},
		},
	}

	assignments, rejections, shortfalls, candidateWarnings, cancelled := run(ctx, snap, opts)
	result.Metrics.ConstraintRejections = rejections
	for _, sf := range shortfalls {
		result.Warnings.AddWarningWithContext(CodeCoverageShortfall, sf.String(), sf.Context())
	}
	for _, w := range candidateWarnings {
		result.Warnings.AddWarning(CodeCandidateSourceErr, w)
	}

	if cancelled {
		if archErr := store.SetStatus(ctx, v.Number, entity.VersionStatusArchived); archErr != nil {
			result.Errors = append(result.Errors, archErr.Error())
		}
		result.Warnings.AddWarning(CodeCancelled, "generation run was cancelled before completion")
		result.Version.Status = entity.VersionStatusArchived
		return result
	}

	if err := store.Persist(ctx, v.Number, assignments); err != nil {
		if archErr := store.SetStatus(ctx, v.Number, entity.VersionStatusArchived); archErr != nil {
			result.Errors = append(result.Errors, archErr.Error())
		}
		result.Errors = append(result.Errors, fmt.Sprintf("persist: %v", err))
		result.Version.Status = entity.VersionStatusArchived
		return result
	}

	result.Assignments = assignments
	computeMetrics(&result.Metrics, assignments, snap.ShiftTemplates)
	return result
}

// shortfall records one interval whose minimum headcount (or keyholder
// requirement) could not be met, along with the reasons the top-n
// candidates were rejected (§7: "the reasons the top-n candidates were
// rejected").
type shortfall struct {
	Date      entity.Date
	Interval  timeutil.TimeOfDay
	Need      distribution.Need
	Assigned  int
	Rejections []distribution.Rejection
}

func (s shortfall) String() string {
	return fmt.Sprintf("%s interval %s: assigned %d of %d (keyholder required: %v)",
		s.Date.Format("2006-01-02"), s.Interval, s.Assigned, s.Need.MinEmployees, s.Need.RequiresKeyholder)
}

func (s shortfall) Context() map[string]interface{} {
	reasons := make([]string, 0, len(s.Rejections))
	for i, r := range s.Rejections {
		if i >= 3 {
			break
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", r.EmployeeID, r.Reason))
	}
	return map[string]interface{}{
		"date":      s.Date.Format("2006-01-02"),
		"interval":  s.Interval.String(),
		"shortfall": s.Need.MinEmployees - s.Assigned,
		"reasons":   reasons,
	}
}

// run drives the day-by-day, interval-by-interval assignment loop (§4.6
// step 4) and returns the emitted assignments, a running rejection count,
// any coverage shortfalls, and whether the loop was cut short by
// cancellation.
func run(ctx context.Context, snap *loader.Snapshot, opts Options) ([]*entity.Assignment, int, []shortfall, []string, bool) {
	settings := snap.Settings
	manager := distribution.New(settings)
	resolver := availability.New(availability.NewIndex(derefAbsences(snap.Absences), derefAvailability(snap.Availability)))
	runState := distribution.NewState()

	var assignments []*entity.Assignment
	var shortfalls []shortfall
	var candidateWarnings []string
	rejectionCount := 0

	dates := datesInHorizon(snap.HorizonStart, snap.HorizonEnd)

	if opts.CreateEmptySchedules {
		assignments = append(assignments, placeholders(snap, dates)...)
	}

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return assignments, rejectionCount, shortfalls, candidateWarnings, true
		default:
		}

		weekday := timeutil.Weekday(date)
		dayCoverage := coverageForWeekday(snap.CoverageRequirements, weekday)
		dayNeeds := buildDayNeeds(dayCoverage, settings.IntervalMinutes)

		for _, ivalStart := range sortedIntervals(dayNeeds) {
			need := dayNeeds[ivalStart]
			var lastRejections []distribution.Rejection

			for {
				count := runState.CurrentCount(date, ivalStart)
				keyholderOK := !need.RequiresKeyholder || runState.HasKeyholder(date, ivalStart)
				if count >= need.MaxEmployees {
					break
				}
				if count >= need.MinEmployees && keyholderOK {
					break
				}

				params := distribution.SelectParams{
					Date:          date,
					IntervalStart: ivalStart,
					Need:          need,
					DayNeeds:      dayNeeds,
					Templates:     snap.ShiftTemplates,
					Employees:     snap.Employees,
					Resolver:      resolver,
				}
				assignment, rejections, ok := manager.SelectOne(params, runState)
				rejectionCount += len(rejections)
				if !ok {
					lastRejections = rejections
					break
				}
				assignments = dedupePlaceholder(assignments, assignment)
			}

			finalCount := runState.CurrentCount(date, ivalStart)
			keyholderOK := !need.RequiresKeyholder || runState.HasKeyholder(date, ivalStart)

			if (finalCount < need.MinEmployees || !keyholderOK) && opts.CandidateSource != nil {
				params := distribution.SelectParams{
					Date:          date,
					IntervalStart: ivalStart,
					Need:          need,
					DayNeeds:      dayNeeds,
					Templates:     snap.ShiftTemplates,
					Employees:     snap.Employees,
					Resolver:      resolver,
				}
				assigned, err := fillFromCandidateSource(ctx, opts, manager, params, runState)
				if err != nil {
					candidateWarnings = append(candidateWarnings, fmt.Sprintf(
						"%s interval %s: candidate source unavailable: %v", date.Format("2006-01-02"), ivalStart, err))
				}
				assignments = append(assignments, assigned...)
				finalCount = runState.CurrentCount(date, ivalStart)
				keyholderOK = !need.RequiresKeyholder || runState.HasKeyholder(date, ivalStart)
			}

			if finalCount < need.MinEmployees || !keyholderOK {
				shortfalls = append(shortfalls, shortfall{
					Date: date, Interval: ivalStart, Need: need, Assigned: finalCount, Rejections: lastRejections,
				})
			}
		}
	}

	return assignments, rejectionCount, shortfalls, candidateWarnings, false
}

// fillFromCandidateSource consults the optional external candidate source
// (internal/llm) for one interval that the greedy heuristic could not
// fill alone. Every proposal still passes through the Constraint Checker
// via Manager.TryAssign -- the source is advisory, never trusted outright
// (§5). A timeout or Propose error is returned so the caller can record a
// warning; it is never fatal to the run.
func fillFromCandidateSource(ctx context.Context, opts Options, manager *distribution.Manager, params distribution.SelectParams, state *distribution.State) ([]*entity.Assignment, error) {
	timeout := opts.CandidateSourceTimeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := llm.Request{
		Date:              params.Date,
		IntervalStart:     int(params.IntervalStart),
		MinEmployees:      params.Need.MinEmployees,
		MaxEmployees:      params.Need.MaxEmployees,
		RequiresKeyholder: params.Need.RequiresKeyholder,
		AllowedGroups:     params.Need.AllowedGroups,
	}
	candidates, err := opts.CandidateSource.Propose(cctx, req)
	if err != nil {
		return nil, err
	}

	var out []*entity.Assignment
	for _, c := range candidates {
		count := state.CurrentCount(params.Date, params.IntervalStart)
		keyholderOK := !params.Need.RequiresKeyholder || state.HasKeyholder(params.Date, params.IntervalStart)
		if count >= params.Need.MaxEmployees || (count >= params.Need.MinEmployees && keyholderOK) {
			break
		}
		assignment, _, ok := manager.TryAssign(params, c.EmployeeID, c.ShiftTemplateID, state)
		if !ok {
			continue
		}
		out = append(out, assignment)
	}
	return out, nil
}

func sortedIntervals(dayNeeds map[timeutil.TimeOfDay]distribution.Need) []timeutil.TimeOfDay {
	out := make([]timeutil.TimeOfDay, 0, len(dayNeeds))
	for t := range dayNeeds {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func datesInHorizon(start, end entity.Date) []entity.Date {
	var out []entity.Date
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func coverageForWeekday(rows []*entity.CoverageRequirement, weekday int) []*entity.CoverageRequirement {
	var out []*entity.CoverageRequirement
	for _, c := range rows {
		if c.DayIndex == weekday && c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	return out
}

// buildDayNeeds folds one weekday's coverage rows into a per-interval need
// table, expanding each row across its covered intervals at the
// configured granularity and materializing the synthetic pre-open /
// post-close keyholder windows (DESIGN.md open-question decision).
func buildDayNeeds(rows []*entity.CoverageRequirement, granularityMinutes int) map[timeutil.TimeOfDay]distribution.Need {
	out := make(map[timeutil.TimeOfDay]distribution.Need)
	for _, c := range rows {
		for offset := 0; offset < int(timeutil.Duration(c.Start, c.End).Minutes()); offset += granularityMinutes {
			ivalStart := c.Start.AddMinutes(offset)
			mergeNeed(out, ivalStart, c.MinEmployees, c.MaxEmployees, c.RequiresKeyholder, c.AllowedGroups)
		}
		if c.HasPreOpenWindow() {
			preStart := c.Start.AddMinutes(-c.KeyholderBeforeMinutes)
			mergeNeed(out, preStart, 1, maxInt(1, c.MaxEmployees), true, nil)
		}
		if c.HasPostCloseWindow() {
			postStart := c.End
			mergeNeed(out, postStart, 1, maxInt(1, c.MaxEmployees), true, nil)
		}
	}
	return out
}

func mergeNeed(out map[timeutil.TimeOfDay]distribution.Need, start timeutil.TimeOfDay, min, max int, requiresKeyholder bool, groups []entity.Group) {
	existing, ok := out[start]
	if !ok {
		out[start] = distribution.Need{MinEmployees: min, MaxEmployees: max, RequiresKeyholder: requiresKeyholder, AllowedGroups: groups}
		return
	}
	if min > existing.MinEmployees {
		existing.MinEmployees = min
	}
	if max > existing.MaxEmployees {
		existing.MaxEmployees = max
	}
	existing.RequiresKeyholder = existing.RequiresKeyholder || requiresKeyholder
	if len(groups) > 0 {
		existing.AllowedGroups = intersectOrUnion(existing.AllowedGroups, groups)
	}
	out[start] = existing
}

func intersectOrUnion(a, b []entity.Group) []entity.Group {
	if len(a) == 0 {
		return b
	}
	return a
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func placeholders(snap *loader.Snapshot, dates []entity.Date) []*entity.Assignment {
	var out []*entity.Assignment
	for _, emp := range snap.Employees {
		for _, d := range dates {
			out = append(out, &entity.Assignment{
				EmployeeID: emp.ID,
				Date:       d,
				Status:     entity.AssignmentStatusPlaceholder,
				CreatedAt:  entity.Now(),
			})
		}
	}
	return out
}

// dedupePlaceholder drops the placeholder row for (employee, date) once a
// real assignment is made on that date, per §4.6 step 3: "later overwritten
// when a real assignment is made".
func dedupePlaceholder(assignments []*entity.Assignment, real *entity.Assignment) []*entity.Assignment {
	out := assignments[:0]
	for _, a := range assignments {
		if a.IsPlaceholder() && a.EmployeeID == real.EmployeeID && a.Date.Equal(real.Date) {
			continue
		}
		out = append(out, a)
	}
	return append(out, real)
}

func computeMetrics(m *Metrics, assignments []*entity.Assignment, templates []*entity.ShiftTemplate) {
	categoryByTemplate := make(map[entity.ShiftTemplateID]entity.ShiftTypeCategory, len(templates))
	for _, t := range templates {
		categoryByTemplate[t.ID] = t.Category
	}

	m.TotalAssignments = len(assignments)
	for _, a := range assignments {
		if a.IsPlaceholder() {
			continue
		}
		m.PerEmployeeHours[a.EmployeeID] += a.Duration()
		if a.ShiftTemplateID != nil {
			m.PerCategoryCounts[categoryByTemplate[*a.ShiftTemplateID]]++
		}
	}
	m.FairnessScore = fairnessScore(m.PerEmployeeHours)
}

// fairnessScore turns the spread of per-employee hours into a bounded
// 0..1 value (1 = perfectly even), the single scalar §4.6's "fairness
// score" names without specifying a formula.
func fairnessScore(hours map[entity.EmployeeID]float64) float64 {
	if len(hours) == 0 {
		return 1
	}
	var sum float64
	for _, h := range hours {
		sum += h
	}
	mean := sum / float64(len(hours))
	if mean == 0 {
		return 1
	}
	var variance float64
	for _, h := range hours {
		d := h - mean
		variance += d * d
	}
	variance /= float64(len(hours))
	stddev := math.Sqrt(variance)
	score := 1 - (stddev / mean)
	if score < 0 {
		return 0
	}
	return score
}

func derefAbsences(in []*entity.Absence) []entity.Absence {
	out := make([]entity.Absence, len(in))
	for i, a := range in {
		out[i] = *a
	}
	return out
}

func derefAvailability(in []*entity.Availability) []entity.Availability {
	out := make([]entity.Availability, len(in))
	for i, a := range in {
		out[i] = *a
	}
	return out
}
