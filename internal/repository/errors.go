package repository

import "errors"

// ErrNotFound marks update targets that do not exist or are not visible
// to the caller.
var ErrNotFound = errors.New("not found")
