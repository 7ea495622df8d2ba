package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCaseNotFound is returned when no case matches the requested id
	ErrCaseNotFound = errors.New("case not found")
	// ErrCreateFailed matches any failed case creation
	ErrCreateFailed = errors.New("failed to create case")
	// ErrUpdateFailed matches any failed case update
	ErrUpdateFailed = errors.New("failed to update case")
	// ErrFileAttachFailed matches a failed document metadata write
	ErrFileAttachFailed = errors.New("failed to attach case document")
	// ErrValidation matches any ValidationError
	ErrValidation = errors.New("validation failed")
)

// RemoteQueryError reports a failed read against the record store
type RemoteQueryError struct {
	Op  string
	Err error
}

func (e *RemoteQueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteQueryError) Unwrap() error { return e.Err }

// Mutation operations
const (
	OpCreate = "create"
	OpUpdate = "update"
)

// MutationError reports a failed create or update. It matches ErrCreateFailed
// or ErrUpdateFailed depending on Op, and unwraps to the store error.
type MutationError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s case %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s case: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

func (e *MutationError) Is(target error) bool {
	switch target {
	case ErrCreateFailed:
		return e.Op == OpCreate
	case ErrUpdateFailed:
		return e.Op == OpUpdate
	}
	return false
}

// FileAttachError reports that a case was stored but its document could not
// be attached. The case itself remains valid.
type FileAttachError struct {
	CaseID string
	Err    error
}

func (e *FileAttachError) Error() string {
	return fmt.Sprintf("attach document to case %s: %v", e.CaseID, e.Err)
}

func (e *FileAttachError) Unwrap() error { return e.Err }

func (e *FileAttachError) Is(target error) bool { return target == ErrFileAttachFailed }

// ValidationError lists the form fields that blocked a submission
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
