package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoUsableData      = errors.New("no usable data")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrTableTooLarge     = errors.New("table exceeds upload limit")
)
