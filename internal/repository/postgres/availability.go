package postgres

import (
	"context"
	"fmt"

	"github.com/retailshift/scheduler/internal/entity"
)

type availabilityRepo struct{ q querier }

func (r *availabilityRepo) Create(ctx context.Context, a *entity.Availability) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO availability (id, employee_id, day_of_week, hour, category, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, a.ID, a.EmployeeID, a.DayOfWeek, a.Hour, string(a.Category), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create availability: %w", err)
	}
	return nil
}

func (r *availabilityRepo) ListByEmployee(ctx context.Context, employeeID entity.EmployeeID) ([]*entity.Availability, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, employee_id, day_of_week, hour, category, created_at, updated_at
		FROM availability WHERE employee_id = $1
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list availability by employee: %w", err)
	}
	defer rows.Close()
	return scanAvailabilityRows(rows)
}

func (r *availabilityRepo) ListAll(ctx context.Context) ([]*entity.Availability, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, employee_id, day_of_week, hour, category, created_at, updated_at FROM availability
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list availability: %w", err)
	}
	defer rows.Close()
	return scanAvailabilityRows(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanAvailabilityRows(rows rowScanner) ([]*entity.Availability, error) {
	var out []*entity.Availability
	for rows.Next() {
		var a entity.Availability
		var category string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.DayOfWeek, &a.Hour, &category, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan availability: %w", err)
		}
		a.Category = entity.AvailabilityCategory(category)
		out = append(out, &a)
	}
	return out, rows.Err()
}
