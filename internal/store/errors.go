package store

import "errors"

// ErrNotFound is returned when a row does not exist. Callers treat it as
// "initialize with defaults" for per-student state.
var ErrNotFound = errors.New("not found")
