package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

type coverageRepo struct{ q querier }

func (r *coverageRepo) Create(ctx context.Context, c *entity.CoverageRequirement) error {
	groups, _ := json.Marshal(c.AllowedGroups)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO coverage_requirements
			(id, day_index, start_minute, end_minute, min_employees, max_employees, allowed_groups,
			 requires_keyholder, keyholder_before_minutes, keyholder_after_minutes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, c.ID, c.DayIndex, int(c.Start), int(c.End), c.MinEmployees, c.MaxEmployees, groups,
		c.RequiresKeyholder, c.KeyholderBeforeMinutes, c.KeyholderAfterMinutes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create coverage requirement: %w", err)
	}
	return nil
}

func (r *coverageRepo) ListAll(ctx context.Context) ([]*entity.CoverageRequirement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, day_index, start_minute, end_minute, min_employees, max_employees, allowed_groups,
		       requires_keyholder, keyholder_before_minutes, keyholder_after_minutes, created_at, updated_at
		FROM coverage_requirements WHERE deleted_at IS NULL ORDER BY day_index, start_minute
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list coverage requirements: %w", err)
	}
	defer rows.Close()

	var out []*entity.CoverageRequirement
	for rows.Next() {
		c, err := scanCoverage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *coverageRepo) ListByDayIndex(ctx context.Context, dayIndex int) ([]*entity.CoverageRequirement, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, day_index, start_minute, end_minute, min_employees, max_employees, allowed_groups,
		       requires_keyholder, keyholder_before_minutes, keyholder_after_minutes, created_at, updated_at
		FROM coverage_requirements WHERE day_index = $1 AND deleted_at IS NULL ORDER BY start_minute
	`, dayIndex)
	if err != nil {
		return nil, fmt.Errorf("postgres: list coverage requirements by day: %w", err)
	}
	defer rows.Close()

	var out []*entity.CoverageRequirement
	for rows.Next() {
		c, err := scanCoverage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCoverage(row scannable) (*entity.CoverageRequirement, error) {
	var c entity.CoverageRequirement
	var start, end int
	var groupsJSON []byte
	if err := row.Scan(&c.ID, &c.DayIndex, &start, &end, &c.MinEmployees, &c.MaxEmployees, &groupsJSON,
		&c.RequiresKeyholder, &c.KeyholderBeforeMinutes, &c.KeyholderAfterMinutes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan coverage requirement: %w", err)
	}
	c.Start = timeutil.TimeOfDay(start)
	c.End = timeutil.TimeOfDay(end)
	_ = json.Unmarshal(groupsJSON, &c.AllowedGroups)
	return &c, nil
}
