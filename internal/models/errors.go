package models

import "errors"

var (
	ErrInvalidDateRange  = errors.New("start date must not be after end date")
	ErrDateInPast        = errors.New("dates must be today or later")
	ErrInvalidPrice      = errors.New("price per day must be greater than zero")
	ErrDatesUnavailable  = errors.New("selected dates overlap an existing booking or blackout")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown booking status")
	ErrStaleStatus       = errors.New("booking status changed since it was read")

	ErrNotFound = errors.New("record not found")
)
