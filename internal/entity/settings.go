package entity

// Settings holds the §6 configuration keys the core consumes, materialized
// by the Resource Loader from the snapshot's settings rows. Zero-value
// fields are not valid defaults on their own; callers should build Settings
// through DefaultSettings and override only what the snapshot specifies.
type Settings struct {
	MaxConsecutiveDays         int
	MinRestHours               float64
	EnforceRestPeriods         bool
	ContractedHoursLimitFactor float64
	MaxHoursPerGroup           map[Group]float64
	MaxDailyHoursPerGroup      map[Group]float64
	DefaultMaxDailyHours       float64
	IntervalMinutes            int
	PreferredAvailabilityBonus float64
}

// DefaultSettings returns the documented defaults from the settings table.
func DefaultSettings() Settings {
	return Settings{
		MaxConsecutiveDays:         7,
		MinRestHours:               11,
		EnforceRestPeriods:         true,
		ContractedHoursLimitFactor: 1.2,
		MaxHoursPerGroup:           map[Group]float64{},
		MaxDailyHoursPerGroup:      map[Group]float64{},
		DefaultMaxDailyHours:       8,
		IntervalMinutes:            60,
		PreferredAvailabilityBonus: 0.2,
	}
}

// MaxDailyHoursFor returns the per-group daily hour cap, falling back to
// DefaultMaxDailyHours when the group has no override.
func (s Settings) MaxDailyHoursFor(group Group) float64 {
	if v, ok := s.MaxDailyHoursPerGroup[group]; ok {
		return v
	}
	return s.DefaultMaxDailyHours
}

// MaxWeeklyHoursFor returns the configured weekly group cap, and whether one
// is configured at all (zero value means "not configured", per §4.4:
// MAX_WEEKLY_HOURS_GROUP only applies "if configured").
func (s Settings) MaxWeeklyHoursFor(group Group) (float64, bool) {
	v, ok := s.MaxHoursPerGroup[group]
	return v, ok
}
