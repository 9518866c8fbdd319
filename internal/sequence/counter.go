// Package sequence issues strictly increasing document numbers.
//
// Every backend runs read, increment and persist as one critical section,
// so a number is never handed out twice. Numbers may be skipped when a
// caller fails after allocating one.
package sequence

import (
	"context"
	"fmt"
)

// Counter hands out the next document number.
type Counter interface {
	Next(ctx context.Context) (int, error)
}

// PersistenceError reports that the backing store could not be read or
// written. Only the request that asked for a number fails.
type PersistenceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("sequence %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(backend, op string, err error) error {
	return &PersistenceError{Backend: backend, Op: op, Err: err}
}
