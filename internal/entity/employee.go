package entity

import "fmt"

// Employee is a roster member. The core treats the roster as immutable
// during one generation run; creation and updates happen outside the core.
type Employee struct {
	ID               EmployeeID
	Name             string
	Group            Group
	ContractedHours  float64
	IsKeyholder      bool
	IsActive         bool
	PreferredDays    []int // weekday indices, 0=Monday
	AvoidDays        []int
	CreatedAt        DateTime
	UpdatedAt        DateTime
	DeletedAt        *DateTime
	DeletedBy        *EmployeeID
}

// IsDeleted reports whether the employee has been soft-deleted.
func (e *Employee) IsDeleted() bool {
	return e.DeletedAt != nil
}

// SoftDelete marks the employee deleted without removing the row, so
// historical assignments keep a valid foreign key.
func (e *Employee) SoftDelete(deleterID EmployeeID) {
	e.DeletedAt = NowPtr()
	e.DeletedBy = &deleterID
}

// ValidateContractedHoursBand checks the invariant that contracted hours
// fall within the [min,max] band configured for the employee's group.
func (e *Employee) ValidateContractedHoursBand(minHours, maxHours float64) error {
	if e.ContractedHours < minHours || e.ContractedHours > maxHours {
		return fmt.Errorf("employee %s: contracted hours %.1f outside band [%.1f,%.1f] for group %s",
			e.ID, e.ContractedHours, minHours, maxHours, e.Group)
	}
	return nil
}

// PrefersDay reports whether weekday (0=Monday) is in the employee's
// preferred-days list.
func (e *Employee) PrefersDay(weekday int) bool {
	for _, d := range e.PreferredDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// AvoidsDay reports whether weekday (0=Monday) is in the employee's
// avoid-days list.
func (e *Employee) AvoidsDay(weekday int) bool {
	for _, d := range e.AvoidDays {
		if d == weekday {
			return true
		}
	}
	return false
}
