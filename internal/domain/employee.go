package domain

import "time"

// DateLayout is the wire and storage format for DateJoined.
const DateLayout = "2006-01-02"

// Employee is a single directory record. ID and DateJoined are assigned by
// the store at creation time; Department and Role are optional.
type Employee struct {
	ID         int64
	Name       string
	Email      string
	Department *string
	Role       *string
	DateJoined time.Time
}

// EmployeePatch carries a partial update. Nil fields are left untouched.
type EmployeePatch struct {
	Name       *string
	Email      *string
	Department *string
	Role       *string
}

// EmployeeFilter narrows list and count queries. Department and Role match
// the full string case-insensitively; empty values match everything.
type EmployeeFilter struct {
	Department string
	Role       string
}
