package config

import "errors"

var (
	// ErrMissingOption marks a mandatory option with no value.
	ErrMissingOption = errors.New("mandatory option is not set")
	// ErrInvalidOption marks an option whose value cannot be used.
	ErrInvalidOption = errors.New("option value is invalid")
)
