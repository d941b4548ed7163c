package domain

import "errors"

// Sentinel errors shared by the repository, service and API layers.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoSequences  = errors.New("no exception sequences")
)
