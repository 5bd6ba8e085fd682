package domain

import "errors"

// ErrNotFound is returned by id lookups when no entity matches. Callers render
// a not-found state rather than failing loudly.
var ErrNotFound = errors.New("not found")
