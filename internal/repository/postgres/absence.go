package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
)

type absenceRepo struct{ q querier }

func (r *absenceRepo) Create(ctx context.Context, a *entity.Absence) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO absences (id, employee_id, start_date, end_date, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.EmployeeID, a.StartDate, a.EndDate, a.Reason, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create absence: %w", err)
	}
	return nil
}

func (r *absenceRepo) ListIntersecting(ctx context.Context, start, end time.Time) ([]*entity.Absence, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, reason, created_at
		FROM absences WHERE start_date <= $2 AND end_date >= $1
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("postgres: list intersecting absences: %w", err)
	}
	defer rows.Close()

	var out []*entity.Absence
	for rows.Next() {
		var a entity.Absence
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.StartDate, &a.EndDate, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan absence: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
