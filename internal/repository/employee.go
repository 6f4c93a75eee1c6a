package repository

import (
	"context"

	"employee-directory/internal/domain"
)

// EmployeeRepository defines persistence operations for Employee records.
type EmployeeRepository interface {
	Init(ctx context.Context) error
	// Create assigns ID and DateJoined and persists the record.
	Create(ctx context.Context, employee *domain.Employee) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	// GetByEmail matches the address exactly, case-sensitively.
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	// List returns records in id order within the skip/limit window.
	List(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error)
	// Count reports the filtered total irrespective of any pagination window.
	Count(ctx context.Context, filter domain.EmployeeFilter) (int, error)
	// Update applies only the non-nil fields of the patch.
	Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error)
	// Delete reports whether a record existed and was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
