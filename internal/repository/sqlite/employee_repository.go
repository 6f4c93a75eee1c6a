package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"employee-directory/internal/domain"
	"employee-directory/internal/repository"
)

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	department TEXT NULL,
	role TEXT NULL,
	date_joined TEXT NOT NULL
);
`

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) repository.EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEmployeesTable); err != nil {
		return fmt.Errorf("create employees table: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) (int64, error) {
	employee.DateJoined = time.Now().UTC().Truncate(24 * time.Hour)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO employees (name, email, department, role, date_joined)
VALUES (?, ?, ?, ?, ?)`,
		employee.Name,
		employee.Email,
		nullString(employee.Department),
		nullString(employee.Role),
		employee.DateJoined.Format(domain.DateLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("insert employee: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("employee last insert id: %w", err)
	}
	employee.ID = id
	return id, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, department, role, date_joined
FROM employees
WHERE id = ?`,
		id,
	)
	return scanEmployee(row)
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	// exact, case-sensitive match; do not LOWER() here
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, email, department, role, date_joined
FROM employees
WHERE email = ?`,
		email,
	)
	return scanEmployee(row)
}

func (r *EmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter, skip, limit int) ([]domain.Employee, error) {
	where, args := filterClause(filter)
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, department, role, date_joined
FROM employees
`+where+`
ORDER BY id
LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

func (r *EmployeeRepository) Count(ctx context.Context, filter domain.EmployeeFilter) (int, error) {
	where, args := filterClause(filter)

	var total int
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees `+where, args...)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return total, nil
}

func (r *EmployeeRepository) Update(ctx context.Context, id int64, patch domain.EmployeePatch) (*domain.Employee, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
SELECT id, name, email, department, role, date_joined
FROM employees
WHERE id = ?`,
		id,
	)
	current, err := scanEmployee(row)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		current.Name = *patch.Name
	}
	if patch.Email != nil {
		current.Email = *patch.Email
	}
	if patch.Department != nil {
		current.Department = patch.Department
	}
	if patch.Role != nil {
		current.Role = patch.Role
	}

	_, err = tx.ExecContext(ctx, `
UPDATE employees
SET name=?, email=?, department=?, role=?
WHERE id=?`,
		current.Name,
		current.Email,
		nullString(current.Department),
		nullString(current.Role),
		current.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update employee: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return current, nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id=?`, id)
	if err != nil {
		return false, fmt.Errorf("delete employee: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("employee delete rows affected: %w", err)
	}
	return aff > 0, nil
}

func filterClause(filter domain.EmployeeFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Department != "" {
		conds = append(conds, "LOWER(department) = LOWER(?)")
		args = append(args, filter.Department)
	}
	if filter.Role != "" {
		conds = append(conds, "LOWER(role) = LOWER(?)")
		args = append(args, filter.Role)
	}
	if len(conds) == 0 {
		return "", nil
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanEmployee(row interface {
	Scan(dest ...any) error
}) (*domain.Employee, error) {
	var (
		employee   domain.Employee
		department sql.NullString
		role       sql.NullString
		joined     string
	)
	if err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&department,
		&role,
		&joined,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan employee: %w", err)
	}

	if department.Valid {
		employee.Department = &department.String
	}
	if role.Valid {
		employee.Role = &role.String
	}

	dateJoined, err := time.Parse(domain.DateLayout, joined)
	if err != nil {
		return nil, fmt.Errorf("parse date_joined: %w", err)
	}
	employee.DateJoined = dateJoined

	return &employee, nil
}
