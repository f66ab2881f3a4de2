// Package db provides the local SQLite record store: the singleton draft
// note and the append-only call history.
package db

import (
	"errors"
	"time"
)

// ErrStorageUnavailable marks every failure of the storage backend (disk
// full, locked or closed database, permission problems).
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrRecordNotFound is returned when a call record id does not exist.
var ErrRecordNotFound = errors.New("call record not found")

// StorageError wraps a backend failure with the operation that hit it.
// errors.Is matches both ErrStorageUnavailable and the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage unavailable: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// CallRecord is an archived snapshot of a finished call. Records are never
// updated once written.
type CallRecord struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	Notes           string    `json:"notes"`
	CompletedStages []string  `json:"completedStages"`
	// Duration is the call length in whole seconds.
	Duration int64 `json:"duration"`
}
