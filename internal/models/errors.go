package models

import "errors"

// Store validation errors, shared by the repositories and the services
// that front them
var (
	ErrDuplicateID = errors.New("id already exists")
	ErrNotFound    = errors.New("not found")
)
