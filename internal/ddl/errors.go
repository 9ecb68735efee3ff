package ddl

import "errors"

var (
	// ErrUnsupportedOperation is returned for alter operations the compiler
	// does not know.
	ErrUnsupportedOperation = errors.New("unsupported alter table operation")

	// ErrUnsupportedFeature is returned when a spec asks for something the
	// target dialect cannot express, such as a partial index.
	ErrUnsupportedFeature = errors.New("unsupported feature")
)
