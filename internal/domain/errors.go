package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnsupportedType  = errors.New("unsupported document type")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrWrite            = errors.New("write failed")
)

// Validation errors. Each wraps ErrInvalidInput so handlers can treat them as a group.
var (
	ErrEmptyName        = fmt.Errorf("%w: a name is required", ErrInvalidInput)
	ErrInvalidExtension = fmt.Errorf("%w: invalid file type", ErrInvalidInput)
	ErrInvalidName      = fmt.Errorf("%w: invalid document name", ErrInvalidInput)
	ErrUsernameTaken    = fmt.Errorf("%w: username already exists", ErrInvalidInput)
)
