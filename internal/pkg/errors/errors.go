package errors

import "errors"

var (
	ErrInvalid = errors.New("invalid")
	ErrClosed  = errors.New("store closed")
)
