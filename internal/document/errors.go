package document

import "errors"

var (
	// ErrUnknownField is returned when a line item edit names a field that does not exist.
	ErrUnknownField = errors.New("unknown line item field")

	// ErrInvalidValue is returned when the value type does not fit the edited field.
	ErrInvalidValue = errors.New("invalid value for line item field")
)
