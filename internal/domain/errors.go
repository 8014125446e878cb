package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrUnknownFeature = errors.New("unknown feature")
	ErrTransient      = errors.New("transient failure")
)
