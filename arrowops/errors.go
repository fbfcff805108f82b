package arrowops

import "errors"

var (
	ErrUnsupportedDataType  = errors.New("unsupported data type")
	ErrColumnNotFound       = errors.New("column not found")
	ErrMultipleColumnsFound = errors.New("multiple columns found")
	ErrNoRecords            = errors.New("no records")
	ErrSchemasNotEqual      = errors.New("schemas not equal")
)
