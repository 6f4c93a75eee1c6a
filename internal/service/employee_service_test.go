package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"employee-directory/internal/domain"
	"employee-directory/internal/repository"
)

type stubEmployeeRepo struct {
	createFn     func(ctx context.Context, employee *domain.Employee) (int64, error)
	getByIDFn    func(ctx context.Context, id int64) (*domain.Employee, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.Employee, error)
	listFn       func(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error)
	countFn      func(ctx context.Context, filter domain.EmployeeFilter) (int, error)
	updateFn     func(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error)
	deleteFn     func(ctx context.Context, id int64) (bool, error)
}

func (s *stubEmployeeRepo) Init(ctx context.Context) error { return nil }

func (s *stubEmployeeRepo) Create(ctx context.Context, employee *domain.Employee) (int64, error) {
	if s.createFn == nil {
		employee.ID = 1
		employee.DateJoined = time.Now().UTC()
		return 1, nil
	}
	return s.createFn(ctx, employee)
}

func (s *stubEmployeeRepo) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	if s.getByIDFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubEmployeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	if s.getByEmailFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.getByEmailFn(ctx, email)
}

func (s *stubEmployeeRepo) List(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter, skip, limit)
}

func (s *stubEmployeeRepo) Count(ctx context.Context, filter domain.EmployeeFilter) (int, error) {
	if s.countFn == nil {
		return 0, nil
	}
	return s.countFn(ctx, filter)
}

func (s *stubEmployeeRepo) Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error) {
	if s.updateFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.updateFn(ctx, id, patch)
}

func (s *stubEmployeeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if s.deleteFn == nil {
		return false, nil
	}
	return s.deleteFn(ctx, id)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewEmployeeService(&stubEmployeeRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
			return &domain.Employee{ID: 7, Email: email}, nil
		},
	})

	_, err := svc.Create(context.Background(), &domain.Employee{Name: "X", Email: "taken@x.com"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateMapsStorageDuplicate(t *testing.T) {
	// the unique index can still fire when two creates race past the pre-check
	svc := NewEmployeeService(&stubEmployeeRepo{
		createFn: func(ctx context.Context, employee *domain.Employee) (int64, error) {
			return 0, repository.ErrDuplicateEmail
		},
	})

	_, err := svc.Create(context.Background(), &domain.Employee{Name: "X", Email: "raced@x.com"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdateOwnEmailSucceeds(t *testing.T) {
	current := &domain.Employee{ID: 1, Name: "Bob", Email: "bob@x.com"}
	svc := NewEmployeeService(&stubEmployeeRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Employee, error) {
			return current, nil
		},
		getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
			t.Fatalf("uniqueness re-check must be skipped for the record's own email")
			return nil, nil
		},
		updateFn: func(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error) {
			return current, nil
		},
	})

	email := "bob@x.com"
	_, err := svc.Update(context.Background(), 1, domain.EmployeePatch{Email: &email})
	require.NoError(t, err)
}

func TestUpdateRejectsOtherRecordsEmail(t *testing.T) {
	svc := NewEmployeeService(&stubEmployeeRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Employee, error) {
			return &domain.Employee{ID: 1, Email: "bob@x.com"}, nil
		},
		getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
			return &domain.Employee{ID: 2, Email: email}, nil
		},
	})

	email := "alice@x.com"
	_, err := svc.Update(context.Background(), 1, domain.EmployeePatch{Email: &email})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUpdateUnknownID(t *testing.T) {
	svc := NewEmployeeService(&stubEmployeeRepo{})

	name := "X"
	_, err := svc.Update(context.Background(), 42, domain.EmployeePatch{Name: &name})
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestDeleteUnknownID(t *testing.T) {
	svc := NewEmployeeService(&stubEmployeeRepo{})

	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestListPagePaginationMath(t *testing.T) {
	var gotSkip, gotLimit int
	svc := NewEmployeeService(&stubEmployeeRepo{
		listFn: func(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error) {
			gotSkip, gotLimit = skip, limit
			return nil, nil
		},
		countFn: func(ctx context.Context, filter domain.EmployeeFilter) (int, error) {
			return 7, nil
		},
	})

	page, err := svc.ListPage(context.Background(), domain.EmployeeFilter{}, 2)
	require.NoError(t, err)
	require.Equal(t, PageSize, gotLimit)
	require.Equal(t, PageSize, gotSkip)
	require.Equal(t, 2, page.Page)
	require.Equal(t, PageSize, page.PerPage)
	require.Equal(t, 7, page.Total)
	require.Equal(t, 3, page.TotalPages) // ceil(7/3)
}

func TestListPageBeyondEnd(t *testing.T) {
	svc := NewEmployeeService(&stubEmployeeRepo{
		countFn: func(ctx context.Context, filter domain.EmployeeFilter) (int, error) {
			return 4, nil
		},
	})

	page, err := svc.ListPage(context.Background(), domain.EmployeeFilter{}, 9)
	require.NoError(t, err)
	require.Empty(t, page.Employees)
	require.Equal(t, 4, page.Total)
	require.Equal(t, 2, page.TotalPages)
}

func TestExportCSV(t *testing.T) {
	dept := "Eng"
	svc := NewEmployeeService(&stubEmployeeRepo{
		listFn: func(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error) {
			if skip > 0 {
				return nil, nil
			}
			joined, _ := time.Parse(domain.DateLayout, "2024-05-01")
			return []domain.Employee{
				{ID: 1, Name: "Bob", Email: "bob@x.com", Department: &dept, DateJoined: joined},
			}, nil
		},
	})

	data, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)
	require.Equal(t,
		"id,name,email,department,role,date_joined\n1,Bob,bob@x.com,Eng,,2024-05-01\n",
		string(data),
	)
}
