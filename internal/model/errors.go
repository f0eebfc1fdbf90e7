package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a unique email constraint fires.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotModified is returned by conditional writes that matched the
	// id but not the expected current state.
	ErrNotModified = errors.New("not modified")
)
