package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/retailshift/scheduler/internal/entity"
)

type settingsRepo struct{ q querier }

// Load reads the flat key/value settings table and overlays it onto the
// documented defaults, the way the Resource Loader expects (§6 table:
// every key optional, falls back to its default when absent).
func (r *settingsRepo) Load(ctx context.Context) (entity.Settings, error) {
	settings := entity.DefaultSettings()

	rows, err := r.q.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("postgres: load settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("postgres: scan setting: %w", err)
		}
		applySetting(&settings, key, value)
	}
	return settings, rows.Err()
}

func applySetting(s *entity.Settings, key, value string) {
	switch key {
	case "max_consecutive_days":
		if v, err := strconv.Atoi(value); err == nil {
			s.MaxConsecutiveDays = v
		}
	case "min_rest_hours":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			s.MinRestHours = v
		}
	case "enforce_rest_periods":
		if v, err := strconv.ParseBool(value); err == nil {
			s.EnforceRestPeriods = v
		}
	case "contracted_hours_limit_factor":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			s.ContractedHoursLimitFactor = v
		}
	case "max_hours_per_group":
		var m map[entity.Group]float64
		if err := json.Unmarshal([]byte(value), &m); err == nil {
			s.MaxHoursPerGroup = m
		}
	case "employee_types_max_daily_hours":
		var m map[entity.Group]float64
		if err := json.Unmarshal([]byte(value), &m); err == nil {
			s.MaxDailyHoursPerGroup = m
		}
	case "interval_minutes":
		if v, err := strconv.Atoi(value); err == nil {
			s.IntervalMinutes = v
		}
	case "preferred_availability_bonus":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			s.PreferredAvailabilityBonus = v
		}
	}
}
