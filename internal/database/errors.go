package database

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("storage error")
)

// StorageError wraps a driver or ORM failure together with the operation
// that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
