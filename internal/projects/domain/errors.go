package domain

import "errors"

// ErrNotFound covers both a genuinely missing row and a row owned by a
// different user. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("not found")
