package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup matches no user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("username or email already exists")
	// ErrInvalidToken covers malformed, tampered and expired session tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrPasswordTooLong is returned when a password exceeds the hasher input limit.
	ErrPasswordTooLong = errors.New("password is too long")
)

// ErrorKind tags store errors so callers can tell outages from legitimate results.
type ErrorKind int

const (
	// KindBusiness marks results such as "not found" or "already exists".
	KindBusiness ErrorKind = iota
	// KindInfrastructure marks connection failures, timeouts and query errors.
	KindInfrastructure
)

func (k ErrorKind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// StoreError is returned by UserStore implementations.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewBusinessError wraps err as a business-class store error.
func NewBusinessError(op string, err error) error {
	return &StoreError{Kind: KindBusiness, Op: op, Err: err}
}

// NewInfrastructureError wraps err as an infrastructure-class store error.
func NewInfrastructureError(op string, err error) error {
	return &StoreError{Kind: KindInfrastructure, Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsInfrastructure reports whether err carries an infrastructure-class StoreError.
func IsInfrastructure(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Kind == KindInfrastructure
}
