package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInvalidInput      = errors.New("invalid input")
	ErrOracleUnavailable = errors.New("oracle unavailable")
	ErrPersistence       = errors.New("persistence failure")
)
