package storage

import "errors"

var (
	ErrInvalidQuery    = errors.New("storage: invalid query expression")
	ErrInvalidPath     = errors.New("storage: invalid path")
	ErrNotAnObject     = errors.New("storage: cannot descend through non-object value")
	ErrIndexOutOfRange = errors.New("storage: array index out of range")
)
