package entity

import (
	"fmt"

	"github.com/retailshift/scheduler/internal/timeutil"
)

// CoverageRequirement is a per-weekday, per-interval staffing target: a time
// window that needs between MinEmployees and MaxEmployees present, possibly
// restricted to certain groups and/or requiring a keyholder.
type CoverageRequirement struct {
	ID                  CoverageRequirementID
	DayIndex            int // 0=Monday .. 6=Sunday
	Start               timeutil.TimeOfDay
	End                 timeutil.TimeOfDay
	MinEmployees        int
	MaxEmployees         int
	AllowedGroups       []Group // empty = any group allowed
	RequiresKeyholder   bool
	KeyholderBeforeMinutes int // pre-open presence window, materialized as a synthetic sub-interval (see DESIGN.md, open question decisions)
	KeyholderAfterMinutes  int // post-close presence window, same treatment
	CreatedAt           DateTime
	UpdatedAt           DateTime
	DeletedAt           *DateTime
}

// Validate enforces the row-level invariants: end strictly after start (no
// wrap within a coverage row), and a sane headcount band.
func (c *CoverageRequirement) Validate() error {
	if c.DayIndex < 0 || c.DayIndex > 6 {
		return fmt.Errorf("coverage requirement %s: day_index %d out of range", c.ID, c.DayIndex)
	}
	if c.End <= c.Start {
		return fmt.Errorf("coverage requirement %s: end %s must be after start %s (no wrap allowed)", c.ID, c.End, c.Start)
	}
	if c.MinEmployees < 0 {
		return fmt.Errorf("coverage requirement %s: min_employees %d negative", c.ID, c.MinEmployees)
	}
	if c.MaxEmployees < c.MinEmployees {
		return fmt.Errorf("coverage requirement %s: max_employees %d below min_employees %d", c.ID, c.MaxEmployees, c.MinEmployees)
	}
	return nil
}

// AllowsGroup reports whether group is permitted by this requirement; an
// empty AllowedGroups list means any group is permitted.
func (c *CoverageRequirement) AllowsGroup(group Group) bool {
	if len(c.AllowedGroups) == 0 {
		return true
	}
	for _, g := range c.AllowedGroups {
		if g == group {
			return true
		}
	}
	return false
}

// HasPreOpenWindow reports whether this requirement materializes a
// synthetic keyholder sub-interval before its normal start.
func (c *CoverageRequirement) HasPreOpenWindow() bool {
	return c.RequiresKeyholder && c.KeyholderBeforeMinutes > 0
}

// HasPostCloseWindow reports whether this requirement materializes a
// synthetic keyholder sub-interval after its normal end.
func (c *CoverageRequirement) HasPostCloseWindow() bool {
	return c.RequiresKeyholder && c.KeyholderAfterMinutes > 0
}
