package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrCorruptRecord = errors.New("corrupt record")
	ErrStoreClosed   = errors.New("store closed")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrSignalExists  = errors.New("signal already registered")
)
