package repository

import "errors"

// ErrNotFound indicates no document matched the lookup.
var ErrNotFound = errors.New("repository: not found")

// ErrInvalidID indicates an identifier the backend cannot even parse.
var ErrInvalidID = errors.New("repository: invalid id")

// ErrUnavailable indicates a transient storage fault; callers may retry.
var ErrUnavailable = errors.New("repository: storage unavailable")
