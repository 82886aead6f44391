package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectNotFound is returned by media operations for an absent object.
	ErrObjectNotFound = errors.New("object not found in storage")
	// ErrVersionConflict means the document changed between fetch and store.
	ErrVersionConflict = errors.New("document was modified concurrently")
	// ErrNotConfigured is wrapped by UnavailableError when required settings are absent.
	ErrNotConfigured = errors.New("object store not configured")
)

// UnavailableError reports that the backend could not be reached or refused the
// request (network, credentials, file system).
type UnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func unavailable(op, key string, err error) error {
	return &UnavailableError{Op: op, Key: key, Err: err}
}

// IntegrityCheckFailedError reports that the bytes read back after a write do not
// hold the records that were written. The write must be treated as failed.
type IntegrityCheckFailedError struct {
	Path       string
	Collection string
	Expected   int
	Actual     int
	Err        error // set when the written file could not be read back or decoded
}

func (e *IntegrityCheckFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("integrity check failed for %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("integrity check failed for %s: %s has %d records, expected %d",
		e.Path, e.Collection, e.Actual, e.Expected)
}

func (e *IntegrityCheckFailedError) Unwrap() error { return e.Err }
