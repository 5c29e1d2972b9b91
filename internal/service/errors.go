package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation addresses an id that does not exist
	ErrNotFound = errors.New("email not found")
	// ErrInvalidArgument is returned when a request parameter cannot be parsed
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidArgumentError describes which parameter was rejected.
type InvalidArgumentError struct {
	Param  string
	Detail string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Detail)
}

// Is reports InvalidArgumentError as ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}
