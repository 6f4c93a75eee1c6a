package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"employee-directory/internal/domain"
	"employee-directory/internal/repository"
)

// PageSize is the fixed number of records per list page. Clients cannot
// change it; any client-supplied limit is ignored.
const PageSize = 3

var (
	// ErrDuplicateEmail is returned when a create or update would reuse
	// another employee's email address.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrEmployeeNotFound is returned for operations on unknown employee ids.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Page is the envelope returned by paginated listings.
type Page struct {
	Employees  []domain.Employee
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// EmployeeService applies directory business rules on top of the repository.
type EmployeeService interface {
	Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	ListPage(ctx context.Context, filter domain.EmployeeFilter, page int) (*Page, error)
	Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(ctx context.Context) ([]byte, error)
}

type employeeService struct {
	employees repository.EmployeeRepository
}

func NewEmployeeService(employees repository.EmployeeRepository) EmployeeService {
	return &employeeService{employees: employees}
}

func (s *employeeService) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	if _, err := s.employees.GetByEmail(ctx, employee.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// the unique index backstops the pre-check under concurrent creates
	if _, err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) ListPage(ctx context.Context, filter domain.EmployeeFilter, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * PageSize

	employees, err := s.employees.List(ctx, filter, skip, PageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.employees.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Employees:  employees,
		Page:       page,
		PerPage:    PageSize,
		Total:      total,
		TotalPages: (total + PageSize - 1) / PageSize,
	}, nil
}

func (s *employeeService) Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error) {
	current, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	// re-check uniqueness only against other records; keeping the same
	// address must succeed
	if patch.Email != nil && *patch.Email != current.Email {
		if _, err := s.employees.GetByEmail(ctx, *patch.Email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	updated, err := s.employees.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrEmployeeNotFound
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return updated, nil
}

func (s *employeeService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.employees.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEmployeeNotFound
	}
	return nil
}

// ExportCSV renders the whole directory as CSV in id order.
func (s *employeeService) ExportCSV(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "name", "email", "department", "role", "date_joined"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for skip := 0; ; skip += 100 {
		batch, err := s.employees.List(ctx, domain.EmployeeFilter{}, skip, 100)
		if err != nil {
			return nil, err
		}
		for _, e := range batch {
			record := []string{
				strconv.FormatInt(e.ID, 10),
				e.Name,
				e.Email,
				stringValue(e.Department),
				stringValue(e.Role),
				e.DateJoined.Format(domain.DateLayout),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("write csv record: %w", err)
			}
		}
		if len(batch) < 100 {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
