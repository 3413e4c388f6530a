package ltc

import "errors"

var (
	// ErrMissingTable is returned when one of the three matrix-row tables is absent
	ErrMissingTable = errors.New("ltc table not provided")

	// ErrInvalidTable is returned when table dimensions and data disagree
	ErrInvalidTable = errors.New("invalid ltc table")
)
