package domain

import "errors"

var (
	ErrProjectNotFound    = errors.New("project status not found")
	ErrMalformedTimestamp = errors.New("malformed event timestamp")
	ErrInvalidSeverity    = errors.New("invalid alert severity")
)
