package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
)

type employeeRepo struct{ q querier }

func (r *employeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	preferred, _ := json.Marshal(e.PreferredDays)
	avoid, _ := json.Marshal(e.AvoidDays)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO employees (id, name, group_tag, contracted_hours, is_keyholder, is_active, preferred_days, avoid_days, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, e.ID, e.Name, string(e.Group), e.ContractedHours, e.IsKeyholder, e.IsActive, preferred, avoid, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create employee: %w", err)
	}
	return nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id entity.EmployeeID) (*entity.Employee, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, group_tag, contracted_hours, is_keyholder, is_active, preferred_days, avoid_days,
		       created_at, updated_at, deleted_at, deleted_by
		FROM employees WHERE id = $1
	`, id)
	return scanEmployee(row)
}

func (r *employeeRepo) ListActive(ctx context.Context) ([]*entity.Employee, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, group_tag, contracted_hours, is_keyholder, is_active, preferred_days, avoid_days,
		       created_at, updated_at, deleted_at, deleted_by
		FROM employees WHERE is_active = TRUE AND deleted_at IS NULL ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active employees: %w", err)
	}
	defer rows.Close()

	var out []*entity.Employee
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *employeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	preferred, _ := json.Marshal(e.PreferredDays)
	avoid, _ := json.Marshal(e.AvoidDays)
	res, err := r.q.ExecContext(ctx, `
		UPDATE employees SET name=$2, group_tag=$3, contracted_hours=$4, is_keyholder=$5, is_active=$6,
		       preferred_days=$7, avoid_days=$8, updated_at=$9, deleted_at=$10, deleted_by=$11
		WHERE id=$1
	`, e.ID, e.Name, string(e.Group), e.ContractedHours, e.IsKeyholder, e.IsActive, preferred, avoid, e.UpdatedAt, e.DeletedAt, e.DeletedBy)
	if err != nil {
		return fmt.Errorf("postgres: update employee: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &repository.NotFoundError{ResourceType: "Employee", ResourceID: e.ID.String()}
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row *sql.Row) (*entity.Employee, error) {
	e, err := scanEmployeeRow(row)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "Employee"}
	}
	return e, err
}

func scanEmployeeRow(row scannable) (*entity.Employee, error) {
	var e entity.Employee
	var group string
	var preferred, avoid []byte
	if err := row.Scan(&e.ID, &e.Name, &group, &e.ContractedHours, &e.IsKeyholder, &e.IsActive,
		&preferred, &avoid, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt, &e.DeletedBy); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan employee: %w", err)
	}
	e.Group = entity.Group(group)
	_ = json.Unmarshal(preferred, &e.PreferredDays)
	_ = json.Unmarshal(avoid, &e.AvoidDays)
	return &e, nil
}
