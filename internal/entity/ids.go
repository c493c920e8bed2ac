package entity

import (
	"time"

	"github.com/google/uuid"
)

// Type aliases keep the rest of the codebase free of raw uuid.UUID /
// time.Time references and make the arena-and-id reference style (see
// DESIGN.md) explicit at every call site.
type (
	EmployeeID             = uuid.UUID
	ShiftTemplateID        = uuid.UUID
	CoverageRequirementID  = uuid.UUID
	AvailabilityID         = uuid.UUID
	AbsenceID              = uuid.UUID
	AssignmentID           = uuid.UUID
	Date                   = time.Time
	DateTime               = time.Time
)

// Now returns the current UTC instant, truncated to second precision so
// round-trips through storage layers compare equal.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// NowPtr is Now, boxed for optional timestamp fields (e.g. DeletedAt).
func NowPtr() *time.Time {
	t := Now()
	return &t
}
