package types

import (
	"errors"
	"fmt"
)

// Board lifecycle errors.
var (
	ErrBoardDetached   = errors.New("board is detached")
	ErrAlreadyAttached = errors.New("board is already attached")
)

// Store operation errors. Callers match them with errors.Is; stores wrap
// them with the offending field or id.
var (
	// ErrNotFound reports an id that is absent or already hard-deleted.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidPosition reports an index outside the active sibling range.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrLimitExceeded reports that creating a list would exceed max_lists.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrValidation reports empty required text, a bad color token or a
	// write into an archived parent.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAssociation reports an already active card-label pair.
	ErrDuplicateAssociation = errors.New("duplicate association")

	// ErrReferentialViolation reports a reference that crosses projects.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrStorage is matched by every *StorageError.
	ErrStorage = errors.New("storage error")
)

// StorageError wraps a failure of the underlying store. The transaction it
// happened in has been rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports true for ErrStorage so callers need not know the concrete type.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsUserError reports whether err is a domain error caused by the request
// rather than by storage I/O.
func IsUserError(err error) bool {
	if err == nil || errors.Is(err, ErrStorage) {
		return false
	}
	for _, target := range []error{
		ErrNotFound,
		ErrInvalidPosition,
		ErrLimitExceeded,
		ErrValidation,
		ErrDuplicateAssociation,
		ErrReferentialViolation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
