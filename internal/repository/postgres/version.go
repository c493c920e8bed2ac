package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
)

type versionRepo struct{ q querier }

func (r *versionRepo) Create(ctx context.Context, v *entity.Version) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO versions (number, date_range_start, date_range_end, status, base_version, notes,
			error_note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, v.Number, v.DateRangeStart, v.DateRangeEnd, string(v.Status), v.BaseVersion, v.Notes,
		v.ErrorNote, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create version: %w", err)
	}
	return nil
}

func (r *versionRepo) GetByNumber(ctx context.Context, number int) (*entity.Version, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT number, date_range_start, date_range_end, status, base_version, notes, error_note,
		       created_at, updated_at
		FROM versions WHERE number = $1
	`, number)
	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, &repository.NotFoundError{ResourceType: "version", ResourceID: fmt.Sprintf("%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get version: %w", err)
	}
	return v, nil
}

func (r *versionRepo) GetMaxVersionNumber(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := r.q.QueryRowContext(ctx, `SELECT MAX(number) FROM versions`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("postgres: get max version number: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (r *versionRepo) ListByStatus(ctx context.Context, status entity.VersionStatus) ([]*entity.Version, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT number, date_range_start, date_range_end, status, base_version, notes, error_note,
		       created_at, updated_at
		FROM versions WHERE status = $1 ORDER BY number
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("postgres: list versions by status: %w", err)
	}
	defer rows.Close()
	return scanVersionRows(rows)
}

func (r *versionRepo) ListAll(ctx context.Context) ([]*entity.Version, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT number, date_range_start, date_range_end, status, base_version, notes, error_note,
		       created_at, updated_at
		FROM versions ORDER BY number
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list versions: %w", err)
	}
	defer rows.Close()
	return scanVersionRows(rows)
}

func (r *versionRepo) Update(ctx context.Context, v *entity.Version) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE versions SET status = $2, notes = $3, error_note = $4, updated_at = $5
		WHERE number = $1
	`, v.Number, string(v.Status), v.Notes, v.ErrorNote, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: update version rows affected: %w", err)
	}
	if affected == 0 {
		return &repository.NotFoundError{ResourceType: "version", ResourceID: fmt.Sprintf("%d", v.Number)}
	}
	return nil
}

func (r *versionRepo) Delete(ctx context.Context, number int) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM versions WHERE number = $1`, number)
	if err != nil {
		return fmt.Errorf("postgres: delete version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: delete version rows affected: %w", err)
	}
	if affected == 0 {
		return &repository.NotFoundError{ResourceType: "version", ResourceID: fmt.Sprintf("%d", number)}
	}
	return nil
}

func scanVersion(row scannable) (*entity.Version, error) {
	var v entity.Version
	var status string
	if err := row.Scan(&v.Number, &v.DateRangeStart, &v.DateRangeEnd, &status, &v.BaseVersion, &v.Notes,
		&v.ErrorNote, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan version: %w", err)
	}
	v.Status = entity.VersionStatus(status)
	return &v, nil
}

func scanVersionRows(rows rowScanner) ([]*entity.Version, error) {
	var out []*entity.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
