package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotConflict means the authoritative check found the interval taken
	ErrSlotConflict = errors.New("this time is no longer available, pick another")
	// ErrNotFound means an operation referenced an unknown id
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means an illegal status change was attempted
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidInput means a request failed validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserExists means a user with the same telegram id is already stored
	ErrUserExists = errors.New("user already exists")
)

// DataSourceError wraps a failure of the storage collaborator
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSourceError wraps err unless it already is a DataSourceError
func NewDataSourceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var dsErr *DataSourceError
	if errors.As(err, &dsErr) {
		return err
	}
	return &DataSourceError{Op: op, Err: err}
}

// IsDataSourceError checks if err came from the storage collaborator
func IsDataSourceError(err error) bool {
	var dsErr *DataSourceError
	return errors.As(err, &dsErr)
}
