// Package repository defines the storage contracts the rest of the core
// depends on. Concrete implementations live in the postgres and memory
// subpackages; the core never imports those directly, only this package's
// interfaces, following the teacher's Database/Transaction split
// (lcgerke-schedCU/v2/internal/repository/repository.go).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
)

// NotFoundError is returned when a lookup by id finds no row.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.ResourceType, e.ResourceID)
}

// IsNotFound reports whether err is (or wraps) a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError signals a caller-supplied value failed a storage-layer
// invariant (e.g. a version number collision).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// EmployeeRepository persists the employee roster.
type EmployeeRepository interface {
	Create(ctx context.Context, e *entity.Employee) error
	GetByID(ctx context.Context, id entity.EmployeeID) (*entity.Employee, error)
	ListActive(ctx context.Context) ([]*entity.Employee, error)
	Update(ctx context.Context, e *entity.Employee) error
}

// ShiftTemplateRepository persists the shift template library.
type ShiftTemplateRepository interface {
	Create(ctx context.Context, s *entity.ShiftTemplate) error
	GetByID(ctx context.Context, id entity.ShiftTemplateID) (*entity.ShiftTemplate, error)
	ListAll(ctx context.Context) ([]*entity.ShiftTemplate, error)
}

// CoverageRequirementRepository persists per-weekday coverage rows.
type CoverageRequirementRepository interface {
	Create(ctx context.Context, c *entity.CoverageRequirement) error
	ListAll(ctx context.Context) ([]*entity.CoverageRequirement, error)
	ListByDayIndex(ctx context.Context, dayIndex int) ([]*entity.CoverageRequirement, error)
}

// AvailabilityRepository persists explicit weekly availability patterns.
type AvailabilityRepository interface {
	Create(ctx context.Context, a *entity.Availability) error
	ListByEmployee(ctx context.Context, employeeID entity.EmployeeID) ([]*entity.Availability, error)
	ListAll(ctx context.Context) ([]*entity.Availability, error)
}

// AbsenceRepository persists absence/vacation date ranges.
type AbsenceRepository interface {
	Create(ctx context.Context, a *entity.Absence) error
	ListIntersecting(ctx context.Context, start, end time.Time) ([]*entity.Absence, error)
}

// SettingsRepository persists the key/value settings table.
type SettingsRepository interface {
	Load(ctx context.Context) (entity.Settings, error)
}

// AssignmentRepository persists version-scoped assignment rows. GetByVersion
// and DeleteByVersion exist as single batch operations (rather than N
// per-assignment calls) to avoid the N+1 pattern the teacher's tests guard
// against (memory/schedule.go queryCount instrumentation).
type AssignmentRepository interface {
	CreateBatch(ctx context.Context, assignments []*entity.Assignment) error
	GetByVersion(ctx context.Context, version int) ([]*entity.Assignment, error)
	GetByDateRange(ctx context.Context, start, end time.Time, version int) ([]*entity.Assignment, error)
	DeleteByVersion(ctx context.Context, version int) error
}

// VersionRepository persists version lifecycle metadata.
type VersionRepository interface {
	Create(ctx context.Context, v *entity.Version) error
	GetByNumber(ctx context.Context, number int) (*entity.Version, error)
	GetMaxVersionNumber(ctx context.Context) (int, error)
	ListByStatus(ctx context.Context, status entity.VersionStatus) ([]*entity.Version, error)
	ListAll(ctx context.Context) ([]*entity.Version, error)
	Update(ctx context.Context, v *entity.Version) error
	Delete(ctx context.Context, number int) error
}

// Transaction exposes the same per-entity accessors as Database, scoped to
// a single atomic unit of work, so the Version Store's persist() operation
// can delete-then-insert assignments with an all-or-nothing guarantee.
type Transaction interface {
	Assignments() AssignmentRepository
	Versions() VersionRepository
	Commit() error
	Rollback() error
}

// Database is the top-level storage handle the rest of the core depends
// on, grouping every per-entity repository plus transaction begin.
type Database interface {
	Employees() EmployeeRepository
	ShiftTemplates() ShiftTemplateRepository
	CoverageRequirements() CoverageRequirementRepository
	Availability() AvailabilityRepository
	Absences() AbsenceRepository
	Settings() SettingsRepository
	Assignments() AssignmentRepository
	Versions() VersionRepository

	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}
