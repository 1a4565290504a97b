package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStore        = errors.New("store error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("insufficient scope")
)
