package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/timeutil"
)

type assignmentRepo struct{ q querier }

// CreateBatch inserts every assignment individually inside the caller's
// transaction; the Version Store (internal/version) is the only caller and
// always wraps this in a transaction so the batch is atomic as a whole.
func (r *assignmentRepo) CreateBatch(ctx context.Context, assignments []*entity.Assignment) error {
	for _, a := range assignments {
		if err := r.create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *assignmentRepo) create(ctx context.Context, a *entity.Assignment) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO assignments (id, version, employee_id, shift_template_id, date, start_minute, end_minute,
			break_minutes, status, availability_category, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, a.ID, a.Version, a.EmployeeID, a.ShiftTemplateID, a.Date, int(a.Start), int(a.End),
		a.BreakMinutes, string(a.Status), string(a.AvailabilityCategoryAtAssign), a.Notes, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepo) GetByVersion(ctx context.Context, version int) ([]*entity.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, version, employee_id, shift_template_id, date, start_minute, end_minute, break_minutes,
		       status, availability_category, notes, created_at
		FROM assignments WHERE version = $1 ORDER BY date, start_minute
	`, version)
	if err != nil {
		return nil, fmt.Errorf("postgres: get assignments by version: %w", err)
	}
	defer rows.Close()
	return scanAssignmentRows(rows)
}

func (r *assignmentRepo) GetByDateRange(ctx context.Context, start, end time.Time, version int) ([]*entity.Assignment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, version, employee_id, shift_template_id, date, start_minute, end_minute, break_minutes,
		       status, availability_category, notes, created_at
		FROM assignments WHERE version = $1 AND date BETWEEN $2 AND $3 ORDER BY date, start_minute
	`, version, start, end)
	if err != nil {
		return nil, fmt.Errorf("postgres: get assignments by date range: %w", err)
	}
	defer rows.Close()
	return scanAssignmentRows(rows)
}

func (r *assignmentRepo) DeleteByVersion(ctx context.Context, version int) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM assignments WHERE version = $1`, version)
	if err != nil {
		return fmt.Errorf("postgres: delete assignments by version: %w", err)
	}
	return nil
}

func scanAssignmentRows(rows rowScanner) ([]*entity.Assignment, error) {
	var out []*entity.Assignment
	for rows.Next() {
		var a entity.Assignment
		var start, end int
		var status, availCat string
		var templateID *entity.ShiftTemplateID
		if err := rows.Scan(&a.ID, &a.Version, &a.EmployeeID, &templateID, &a.Date, &start, &end,
			&a.BreakMinutes, &status, &availCat, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan assignment: %w", err)
		}
		a.Start = timeutil.TimeOfDay(start)
		a.End = timeutil.TimeOfDay(end)
		a.Status = entity.AssignmentStatus(status)
		a.AvailabilityCategoryAtAssign = entity.AvailabilityCategory(availCat)
		a.ShiftTemplateID = templateID
		out = append(out, &a)
	}
	return out, rows.Err()
}
