package repository

import "errors"

var (
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when the users unique index rejects an insert.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the employees email unique index rejects a write.
	ErrDuplicateEmail = errors.New("email already exists")
)
