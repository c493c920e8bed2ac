// Package postgres implements repository.Database against PostgreSQL via
// database/sql and github.com/lib/pq, following the teacher's
// internal/repository/postgres package: raw parameterized SQL, no ORM,
// repository.NotFoundError on sql.ErrNoRows.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/retailshift/scheduler/internal/repository"
)

// Schema is the DDL for a fresh database, applied by operators/migrations
// outside the core; kept here as the single source of truth for column
// shapes the queries below assume.
const Schema = `
CREATE TABLE IF NOT EXISTS employees (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	group_tag TEXT NOT NULL,
	contracted_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_keyholder BOOLEAN NOT NULL DEFAULT FALSE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	preferred_days JSONB NOT NULL DEFAULT '[]',
	avoid_days JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ,
	deleted_by UUID
);

CREATE TABLE IF NOT EXISTS shift_templates (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	start_minute INT NOT NULL,
	end_minute INT NOT NULL,
	category TEXT NOT NULL,
	active_days JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS coverage_requirements (
	id UUID PRIMARY KEY,
	day_index INT NOT NULL,
	start_minute INT NOT NULL,
	end_minute INT NOT NULL,
	min_employees INT NOT NULL,
	max_employees INT NOT NULL,
	allowed_groups JSONB NOT NULL DEFAULT '[]',
	requires_keyholder BOOLEAN NOT NULL DEFAULT FALSE,
	keyholder_before_minutes INT NOT NULL DEFAULT 0,
	keyholder_after_minutes INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS availability (
	id UUID PRIMARY KEY,
	employee_id UUID NOT NULL REFERENCES employees(id),
	day_of_week INT NOT NULL,
	hour INT NOT NULL,
	category TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS absences (
	id UUID PRIMARY KEY,
	employee_id UUID NOT NULL REFERENCES employees(id),
	start_date DATE NOT NULL,
	end_date DATE NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS versions (
	number INT PRIMARY KEY,
	date_range_start DATE NOT NULL,
	date_range_end DATE NOT NULL,
	status TEXT NOT NULL,
	base_version INT,
	notes TEXT NOT NULL DEFAULT '',
	error_note TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS assignments (
	id UUID PRIMARY KEY,
	version INT NOT NULL REFERENCES versions(number),
	employee_id UUID NOT NULL REFERENCES employees(id),
	shift_template_id UUID REFERENCES shift_templates(id),
	date DATE NOT NULL,
	start_minute INT NOT NULL,
	end_minute INT NOT NULL,
	break_minutes INT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	availability_category TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Database implements repository.Database against a *sql.DB.
type Database struct {
	db *sql.DB
}

// Open connects to Postgres at dsn and applies Schema idempotently.
func Open(ctx context.Context, dsn string) (*Database, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &Database{db: db}, nil
}

// NewDatabase wraps an already-open *sql.DB, used by tests that manage the
// connection lifecycle themselves (testcontainers).
func NewDatabase(db *sql.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Employees() repository.EmployeeRepository { return &employeeRepo{d.db} }
func (d *Database) ShiftTemplates() repository.ShiftTemplateRepository {
	return &templateRepo{d.db}
}
func (d *Database) CoverageRequirements() repository.CoverageRequirementRepository {
	return &coverageRepo{d.db}
}
func (d *Database) Availability() repository.AvailabilityRepository {
	return &availabilityRepo{d.db}
}
func (d *Database) Absences() repository.AbsenceRepository { return &absenceRepo{d.db} }
func (d *Database) Settings() repository.SettingsRepository { return &settingsRepo{d.db} }
func (d *Database) Assignments() repository.AssignmentRepository {
	return &assignmentRepo{d.db}
}
func (d *Database) Versions() repository.VersionRepository { return &versionRepo{d.db} }
func (d *Database) Close() error                           { return d.db.Close() }

// BeginTx starts a real database/sql transaction, giving the Version
// Store's persist() operation an all-or-nothing guarantee.
func (d *Database) BeginTx(ctx context.Context) (repository.Transaction, error) {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin tx: %w", err)
	}
	return &tx{tx: sqlTx}, nil
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) Assignments() repository.AssignmentRepository { return &assignmentRepo{t.tx} }
func (t *tx) Versions() repository.VersionRepository       { return &versionRepo{t.tx} }
func (t *tx) Commit() error                                { return t.tx.Commit() }
func (t *tx) Rollback() error                              { return t.tx.Rollback() }

// querier is satisfied by both *sql.DB and *sql.Tx, letting every repo
// struct work unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
