package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/timeutil"
)

type templateRepo struct{ q querier }

func (r *templateRepo) Create(ctx context.Context, t *entity.ShiftTemplate) error {
	days, _ := json.Marshal(t.ActiveDays.Sorted())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO shift_templates (id, name, start_minute, end_minute, category, active_days, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, t.ID, t.Name, int(t.Start), int(t.End), string(t.Category), days, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create shift template: %w", err)
	}
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id entity.ShiftTemplateID) (*entity.ShiftTemplate, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, start_minute, end_minute, category, active_days, created_at, updated_at, deleted_at
		FROM shift_templates WHERE id = $1
	`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "ShiftTemplate", ResourceID: id.String()}
	}
	return t, err
}

func (r *templateRepo) ListAll(ctx context.Context) ([]*entity.ShiftTemplate, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, start_minute, end_minute, category, active_days, created_at, updated_at, deleted_at
		FROM shift_templates WHERE deleted_at IS NULL ORDER BY start_minute
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list shift templates: %w", err)
	}
	defer rows.Close()

	var out []*entity.ShiftTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTemplate(row scannable) (*entity.ShiftTemplate, error) {
	var t entity.ShiftTemplate
	var start, end int
	var category string
	var daysJSON []byte
	if err := row.Scan(&t.ID, &t.Name, &start, &end, &category, &daysJSON, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan shift template: %w", err)
	}
	t.Start = timeutil.TimeOfDay(start)
	t.End = timeutil.TimeOfDay(end)
	t.Category = entity.ShiftTypeCategory(category)
	var days []int
	_ = json.Unmarshal(daysJSON, &days)
	t.ActiveDays = entity.NewWeekdaySet(days...)
	return &t, nil
}
