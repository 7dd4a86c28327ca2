package conversation

import (
	"errors"
	"fmt"
)

// DefaultMaxConversations is the live cap per user.
const DefaultMaxConversations = 30

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrTrashEntryNotFound   = errors.New("trash entry not found")
	ErrEmptyMessage         = errors.New("message text cannot be empty")
	ErrInvalidMessage       = errors.New("invalid message")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrCapacityExceeded     = errors.New("conversation limit reached")
	// ErrStorageUnavailable means the user's state could not be read, so
	// nothing may be written over it yet.
	ErrStorageUnavailable = errors.New("conversation storage is unavailable, try again")
)

// CapacityError is a user-facing rejection; it matches ErrCapacityExceeded.
type CapacityError struct {
	Operation string
	Limit     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s rejected: at most %d conversations are allowed, delete one first", e.Operation, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
