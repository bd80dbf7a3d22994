package repository

import "errors"

// ErrNotFound is returned by lookups whose subject does not exist,
// regardless of the backing store
var ErrNotFound = errors.New("record not found")
