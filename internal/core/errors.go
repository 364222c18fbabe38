package core

import "errors"

// Store and service outcomes the HTTP boundary maps to status codes.
// Ownership mismatches are reported as ErrNotFound on purpose: a caller
// probing another user's IDs must not learn that the record exists.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrCategoryInUse      = errors.New("category is referenced by transactions")
	ErrInvalidReference   = errors.New("referenced row does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
