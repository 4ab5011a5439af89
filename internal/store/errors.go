package store

import "errors"

// ErrStorageUnavailable is returned when the database could not be opened or
// a read or write against it failed. The underlying cause is wrapped.
var ErrStorageUnavailable = errors.New("task storage unavailable")
