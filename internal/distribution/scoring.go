package distribution

import (
	"math"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

// Scoring constants, per the SPEC_FULL.md §4.5 table. Kept as named
// constants rather than settings because the spec documents them as fixed
// shaping values, not tunables exposed on the wire.
const (
	availabilityBaseFixed       = 100.0
	availabilityBasePreferred   = 50.0
	availabilityBaseAvailable   = 10.0
	keyholderMatchBonus         = 150.0
	keyholderMismatchPenalty    = -1000.0
	groupMatchBonus             = 75.0
	groupMismatchPenalty        = -750.0
	groupMissingPenalty         = -100.0
	desirabilityMultiplier      = 5.0
	historyPenaltyPerShift      = 8.0
	preferenceDayBonusBase      = 50.0
	overstaffingPenaltyPerSlot  = -50.0
	scoreFloor                  = 0.0
)

// baseDesirability ranks how unpleasant each shift-type category is to
// work, higher meaning less desirable; multiplied by desirabilityMultiplier
// and subtracted from the score to spread unpleasant shifts around.
var baseDesirability = map[entity.ShiftTypeCategory]float64{
	entity.ShiftTypeEarly:   1,
	entity.ShiftTypeMiddle:  0,
	entity.ShiftTypeLate:    2,
	entity.ShiftTypeWeekend: 3,
}

// Need is the resolved interval need for one target interval: the
// headcount band, keyholder requirement, and allowed groups, folded from
// the coverage row (plus any synthetic pre-open/post-close window).
type Need struct {
	MinEmployees      int
	MaxEmployees      int
	RequiresKeyholder bool
	AllowedGroups     []entity.Group
}

func (n Need) allowsGroup(group entity.Group) bool {
	if len(n.AllowedGroups) == 0 {
		return true
	}
	for _, g := range n.AllowedGroups {
		if g == group {
			return true
		}
	}
	return false
}

// ScoreInputs bundles everything the scoring function needs for one
// (employee, template) candidate pair, per SPEC_FULL.md's
// score(employee, template, date, interval, running_state, config) shape.
type ScoreInputs struct {
	Employee      *entity.Employee
	Template      *entity.ShiftTemplate
	Date          time.Time
	IntervalStart timeutil.TimeOfDay
	AvailCategory entity.AvailabilityCategory
	Need          Need
	DayNeeds      map[timeutil.TimeOfDay]Need
	Settings      entity.Settings
}

// Score computes the aggregate real-valued score for one candidate pair,
// the sum of every independently-testable term in SPEC_FULL.md §4.5.
func Score(in ScoreInputs, state *State) float64 {
	if in.AvailCategory == entity.AvailabilityUnavailable {
		return math.Inf(-1)
	}

	score := availabilityScore(in.AvailCategory)
	score += keyholderScore(in.Employee, in.Need)
	score += groupScore(in.Employee, in.Need)
	score += desirabilityPenalty(in.Template)
	score += historyAdjustment(in.Employee, in.Template, state)
	score += preferenceAdjustment(in.Employee, in.Date, in.Settings)
	score += overstaffingPenalty(in, state)
	return score
}

func availabilityScore(cat entity.AvailabilityCategory) float64 {
	switch cat {
	case entity.AvailabilityFixed:
		return availabilityBaseFixed
	case entity.AvailabilityPreferred:
		return availabilityBasePreferred
	case entity.AvailabilityAvailable:
		return availabilityBaseAvailable
	default:
		return math.Inf(-1)
	}
}

func keyholderScore(employee *entity.Employee, need Need) float64 {
	if !need.RequiresKeyholder {
		return 0
	}
	if employee.IsKeyholder {
		return keyholderMatchBonus
	}
	return keyholderMismatchPenalty
}

func groupScore(employee *entity.Employee, need Need) float64 {
	if len(need.AllowedGroups) == 0 {
		return 0
	}
	if employee.Group == "" {
		return groupMissingPenalty
	}
	if need.allowsGroup(employee.Group) {
		return groupMatchBonus
	}
	return groupMismatchPenalty
}

func desirabilityPenalty(template *entity.ShiftTemplate) float64 {
	if template == nil {
		return 0
	}
	return -baseDesirability[template.Category] * desirabilityMultiplier
}

// historyAdjustment reduces the score by historyPenaltyPerShift for every
// shift of the template's category the employee already holds in this run.
// The penalty depends on the employee's own count only; other employees'
// counts are not compared.
func historyAdjustment(employee *entity.Employee, template *entity.ShiftTemplate, state *State) float64 {
	if template == nil {
		return 0
	}
	count := state.CategoryCount(employee.ID, template.Category)
	return -float64(count) * historyPenaltyPerShift
}

func preferenceAdjustment(employee *entity.Employee, date time.Time, settings entity.Settings) float64 {
	weekday := timeutil.Weekday(date)
	bonus := settings.PreferredAvailabilityBonus
	if bonus == 0 {
		bonus = entity.DefaultSettings().PreferredAvailabilityBonus
	}
	switch {
	case employee.PrefersDay(weekday):
		return preferenceDayBonusBase * bonus
	case employee.AvoidsDay(weekday):
		return -preferenceDayBonusBase * bonus
	default:
		return 0
	}
}

// overstaffingPenalty counts every interval other than the target one that
// the candidate's template would also cover and that is already fully
// staffed, discouraging selections whose ripple effect over-allocates
// elsewhere in the shift.
func overstaffingPenalty(in ScoreInputs, state *State) float64 {
	if in.Template == nil {
		return 0
	}
	penalty := 0.0
	for _, ivalStart := range CoveredIntervals(in.Template, in.Date, in.Settings.IntervalMinutes) {
		if ivalStart == in.IntervalStart {
			continue
		}
		need, ok := in.DayNeeds[ivalStart]
		if !ok {
			continue
		}
		if state.CurrentCount(in.Date, ivalStart) >= need.MaxEmployees {
			penalty += overstaffingPenaltyPerSlot
		}
	}
	return penalty
}
