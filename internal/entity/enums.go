package entity

// Group is the closed set of employee contract classes.
type Group string

const (
	GroupFullTime Group = "FULL_TIME"
	GroupPartTime Group = "PART_TIME"
	GroupMiniJob  Group = "MINI_JOB"
	GroupTeamLead Group = "TEAM_LEAD"
)

// ShiftTypeCategory tags a shift template with a rough time-of-day bucket,
// used for desirability scoring and fairness history.
type ShiftTypeCategory string

const (
	ShiftTypeEarly   ShiftTypeCategory = "EARLY"
	ShiftTypeMiddle  ShiftTypeCategory = "MIDDLE"
	ShiftTypeLate    ShiftTypeCategory = "LATE"
	ShiftTypeWeekend ShiftTypeCategory = "WEEKEND"
)

// AvailabilityCategory is the outcome of the availability resolver for a
// given (employee, date, interval).
type AvailabilityCategory string

const (
	AvailabilityAvailable   AvailabilityCategory = "AVAILABLE"
	AvailabilityPreferred   AvailabilityCategory = "PREFERRED"
	AvailabilityFixed       AvailabilityCategory = "FIXED"
	AvailabilityUnavailable AvailabilityCategory = "UNAVAILABLE"
)

// VersionStatus is the version lifecycle state.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "DRAFT"
	VersionStatusPublished VersionStatus = "PUBLISHED"
	VersionStatusArchived  VersionStatus = "ARCHIVED"
)

// AssignmentStatus distinguishes real assignments from placeholder rows
// emitted when create_empty_schedules is set.
type AssignmentStatus string

const (
	AssignmentStatusAssigned    AssignmentStatus = "ASSIGNED"
	AssignmentStatusPlaceholder AssignmentStatus = "PLACEHOLDER"
)

// ViolationKind enumerates the exhaustive set of constraint-checker outcomes.
type ViolationKind string

const (
	ViolationShiftInvalid           ViolationKind = "SHIFT_INVALID"
	ViolationResourceError          ViolationKind = "RESOURCE_ERROR"
	ViolationMaxConsecutiveDays     ViolationKind = "MAX_CONSECUTIVE_DAYS"
	ViolationMinRestBefore          ViolationKind = "MIN_REST_BEFORE"
	ViolationMinRestAfter           ViolationKind = "MIN_REST_AFTER"
	ViolationMaxDailyHours          ViolationKind = "MAX_DAILY_HOURS"
	ViolationMaxWeeklyHoursGroup    ViolationKind = "MAX_WEEKLY_HOURS_GROUP"
	ViolationMaxWeeklyHoursContract ViolationKind = "MAX_WEEKLY_HOURS_CONTRACT"
)
