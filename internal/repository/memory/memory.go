// Package memory implements repository.Database entirely in process memory,
// guarded by a single RWMutex the way the teacher's
// internal/repository/memory/base.go and schedule.go do it. It backs unit
// tests and local/dev runs where a Postgres instance is not available.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/retailshift/scheduler/internal/entity"
	"github.com/retailshift/scheduler/internal/repository"
)

// Store is the shared in-memory backing for every repository accessor,
// mirroring the teacher's MemoryRepository struct.
type Store struct {
	mu sync.RWMutex

	employees    map[entity.EmployeeID]*entity.Employee
	templates    map[entity.ShiftTemplateID]*entity.ShiftTemplate
	coverage     map[entity.CoverageRequirementID]*entity.CoverageRequirement
	availability map[entity.AvailabilityID]*entity.Availability
	absences     map[entity.AbsenceID]*entity.Absence
	settings     entity.Settings
	assignments  map[entity.AssignmentID]*entity.Assignment
	versions     map[int]*entity.Version
}

// NewStore builds an empty in-memory store seeded with default settings.
func NewStore() *Store {
	return &Store{
		employees:    make(map[entity.EmployeeID]*entity.Employee),
		templates:    make(map[entity.ShiftTemplateID]*entity.ShiftTemplate),
		coverage:     make(map[entity.CoverageRequirementID]*entity.CoverageRequirement),
		availability: make(map[entity.AvailabilityID]*entity.Availability),
		absences:     make(map[entity.AbsenceID]*entity.Absence),
		settings:     entity.DefaultSettings(),
		assignments:  make(map[entity.AssignmentID]*entity.Assignment),
		versions:     make(map[int]*entity.Version),
	}
}

// Database implements repository.Database over a Store.
type Database struct {
	store *Store
}

// NewDatabase wraps store as a repository.Database.
func NewDatabase(store *Store) *Database {
	return &Database{store: store}
}

func (d *Database) Employees() repository.EmployeeRepository { return &employeeRepo{d.store} }
func (d *Database) ShiftTemplates() repository.ShiftTemplateRepository {
	return &templateRepo{d.store}
}
func (d *Database) CoverageRequirements() repository.CoverageRequirementRepository {
	return &coverageRepo{d.store}
}
func (d *Database) Availability() repository.AvailabilityRepository {
	return &availabilityRepo{d.store}
}
func (d *Database) Absences() repository.AbsenceRepository { return &absenceRepo{d.store} }
func (d *Database) Settings() repository.SettingsRepository { return &settingsRepo{d.store} }
func (d *Database) Assignments() repository.AssignmentRepository {
	return &assignmentRepo{d.store}
}
func (d *Database) Versions() repository.VersionRepository { return &versionRepo{d.store} }
func (d *Database) Close() error                           { return nil }

// BeginTx returns a transaction scoped to the same Store; memory writes
// commit immediately, so Commit/Rollback are bookkeeping only, not real
// isolation (the postgres implementation is the one with real atomicity).
func (d *Database) BeginTx(ctx context.Context) (repository.Transaction, error) {
	return &tx{store: d.store}, nil
}

type tx struct {
	store *Store
}

func (t *tx) Assignments() repository.AssignmentRepository { return &assignmentRepo{t.store} }
func (t *tx) Versions() repository.VersionRepository       { return &versionRepo{t.store} }
func (t *tx) Commit() error                                { return nil }
func (t *tx) Rollback() error                               { return nil }

type employeeRepo struct{ s *Store }

func (r *employeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.employees[e.ID] = e
	return nil
}

func (r *employeeRepo) GetByID(ctx context.Context, id entity.EmployeeID) (*entity.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Employee", ResourceID: id.String()}
	}
	return e, nil
}

func (r *employeeRepo) ListActive(ctx context.Context) ([]*entity.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Employee
	for _, e := range r.s.employees {
		if e.IsActive && !e.IsDeleted() {
			out = append(out, e)
		}
	}
	sortByID(out, func(i int) string { return out[i].ID.String() })
	return out, nil
}

func (r *employeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; !ok {
		return &repository.NotFoundError{ResourceType: "Employee", ResourceID: e.ID.String()}
	}
	r.s.employees[e.ID] = e
	return nil
}

type templateRepo struct{ s *Store }

func (r *templateRepo) Create(ctx context.Context, t *entity.ShiftTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.templates[t.ID] = t
	return nil
}

func (r *templateRepo) GetByID(ctx context.Context, id entity.ShiftTemplateID) (*entity.ShiftTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.templates[id]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "ShiftTemplate", ResourceID: id.String()}
	}
	return t, nil
}

func (r *templateRepo) ListAll(ctx context.Context) ([]*entity.ShiftTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ShiftTemplate
	for _, t := range r.s.templates {
		if !t.IsDeleted() {
			out = append(out, t)
		}
	}
	return out, nil
}

type coverageRepo struct{ s *Store }

func (r *coverageRepo) Create(ctx context.Context, c *entity.CoverageRequirement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.coverage[c.ID] = c
	return nil
}

func (r *coverageRepo) ListAll(ctx context.Context) ([]*entity.CoverageRequirement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.CoverageRequirement
	for _, c := range r.s.coverage {
		out = append(out, c)
	}
	return out, nil
}

func (r *coverageRepo) ListByDayIndex(ctx context.Context, dayIndex int) ([]*entity.CoverageRequirement, error) {
	all, _ := r.ListAll(ctx)
	var out []*entity.CoverageRequirement
	for _, c := range all {
		if c.DayIndex == dayIndex {
			out = append(out, c)
		}
	}
	return out, nil
}

type availabilityRepo struct{ s *Store }

func (r *availabilityRepo) Create(ctx context.Context, a *entity.Availability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.availability[a.ID] = a
	return nil
}

func (r *availabilityRepo) ListByEmployee(ctx context.Context, employeeID entity.EmployeeID) ([]*entity.Availability, error) {
	all, _ := r.ListAll(ctx)
	var out []*entity.Availability
	for _, a := range all {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *availabilityRepo) ListAll(ctx context.Context) ([]*entity.Availability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Availability
	for _, a := range r.s.availability {
		out = append(out, a)
	}
	return out, nil
}

type absenceRepo struct{ s *Store }

func (r *absenceRepo) Create(ctx context.Context, a *entity.Absence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.absences[a.ID] = a
	return nil
}

func (r *absenceRepo) ListIntersecting(ctx context.Context, start, end time.Time) ([]*entity.Absence, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Absence
	for _, a := range r.s.absences {
		if !a.EndDate.Before(start) && !a.StartDate.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

type settingsRepo struct{ s *Store }

func (r *settingsRepo) Load(ctx context.Context) (entity.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.settings, nil
}

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) CreateBatch(ctx context.Context, assignments []*entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range assignments {
		r.s.assignments[a.ID] = a
	}
	return nil
}

func (r *assignmentRepo) GetByVersion(ctx context.Context, version int) ([]*entity.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Assignment
	for _, a := range r.s.assignments {
		if a.Version == version {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (r *assignmentRepo) GetByDateRange(ctx context.Context, start, end time.Time, version int) ([]*entity.Assignment, error) {
	byVersion, _ := r.GetByVersion(ctx, version)
	var out []*entity.Assignment
	for _, a := range byVersion {
		if !a.Date.Before(start) && !a.Date.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *assignmentRepo) DeleteByVersion(ctx context.Context, version int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.assignments {
		if a.Version == version {
			delete(r.s.assignments, id)
		}
	}
	return nil
}

type versionRepo struct{ s *Store }

func (r *versionRepo) Create(ctx context.Context, v *entity.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.versions[v.Number]; exists {
		return &repository.ValidationError{Field: "number", Message: "version number already allocated"}
	}
	r.s.versions[v.Number] = v
	return nil
}

func (r *versionRepo) GetByNumber(ctx context.Context, number int) (*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.versions[number]
	if !ok {
		return nil, &repository.NotFoundError{ResourceType: "Version", ResourceID: strconv.Itoa(number)}
	}
	return v, nil
}

func (r *versionRepo) GetMaxVersionNumber(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	max := 0
	for n := range r.s.versions {
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (r *versionRepo) ListByStatus(ctx context.Context, status entity.VersionStatus) ([]*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Version
	for _, v := range r.s.versions {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *versionRepo) ListAll(ctx context.Context) ([]*entity.Version, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Version
	for _, v := range r.s.versions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *versionRepo) Update(ctx context.Context, v *entity.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.versions[v.Number]; !ok {
		return &repository.NotFoundError{ResourceType: "Version", ResourceID: strconv.Itoa(v.Number)}
	}
	r.s.versions[v.Number] = v
	return nil
}

func (r *versionRepo) Delete(ctx context.Context, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.versions, number)
	return nil
}

func sortByID(employees []*entity.Employee, key func(i int) string) {
	sort.Slice(employees, func(i, j int) bool { return key(i) < key(j) })
}
