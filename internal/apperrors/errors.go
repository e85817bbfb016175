package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInsufficientFunds indicates an outflow larger than the register balance.
// It is a validation error: errors.Is(err, ErrValidation) holds.
var ErrInsufficientFunds = &insufficientFundsError{}

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or bad credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates an authenticated user lacking the required role.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the resource is busy with a concurrent change.
var ErrConflict = errors.New("conflict")

type insufficientFundsError struct{}

func (*insufficientFundsError) Error() string { return "insufficient funds" }

func (*insufficientFundsError) Unwrap() error { return ErrValidation }
