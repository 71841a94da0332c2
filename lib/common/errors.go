package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

// RetCode classifies the stage of the pipeline an error originated from.
type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCStorageError                      // 1: Failure at the durable storage boundary.
	RetCSerializationError                // 2: Value could not be encoded or decoded.
	RetCEncryptionError                   // 3: Encryption transform failed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCStorageError:
		return "StorageError"
	case RetCSerializationError:
		return "SerializationError"
	case RetCEncryptionError:
		return "EncryptionError"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Sentinels
// --------------------------------------------------------------------------

var (
	// ErrStorage matches (errors.Is) every *Error with code RetCStorageError.
	ErrStorage = errors.New("storage error")
	// ErrSerialization matches every *Error with code RetCSerializationError.
	ErrSerialization = errors.New("serialization error")
	// ErrEncryption matches every *Error with code RetCEncryptionError.
	ErrEncryption = errors.New("encryption error")

	// ErrInvalidKey is wrapped in a storage error when a key can not be mapped into the store.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotSynced is wrapped in a storage error when a value was written but could not be flushed to disk.
	ErrNotSynced = errors.New("written but not synced")
	// ErrClosed is returned by operations on a closed pocket or executor.
	ErrClosed = errors.New("closed")
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a failure of one pipeline stage together with the operation
// and key it happened for.
type Error struct {
	Code RetCode // The return code
	Op   string  // The failed operation (e.g. "rename", "decrypt").
	Key  string  // The affected key, empty for store wide operations.
	Err  error   // The underlying cause.
}

// Error implements the error interface.
func (e *Error) Error() string {
	target := e.Op
	if e.Key != "" {
		target = fmt.Sprintf("%s %q", e.Op, e.Key)
	}
	return fmt.Sprintf("PocketError (code %s): %s: %v", e.Code, target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target is the sentinel of this error's code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrStorage:
		return e.Code == RetCStorageError
	case ErrSerialization:
		return e.Code == RetCSerializationError
	case ErrEncryption:
		return e.Code == RetCEncryptionError
	}
	return false
}

// NewError creates a new Error with the given code.
func NewError(code RetCode, op, key string, err error) *Error {
	return &Error{
		Code: code,
		Op:   op,
		Key:  key,
		Err:  err,
	}
}

// NewStorageError creates a new Error with code RetCStorageError.
func NewStorageError(op, key string, err error) *Error {
	return NewError(RetCStorageError, op, key, err)
}

// NewSerializationError creates a new Error with code RetCSerializationError.
func NewSerializationError(op, key string, err error) *Error {
	return NewError(RetCSerializationError, op, key, err)
}

// NewEncryptionError creates a new Error with code RetCEncryptionError.
func NewEncryptionError(op, key string, err error) *Error {
	return NewError(RetCEncryptionError, op, key, err)
}

// AsStorageError returns err unchanged if it already carries a code,
// otherwise it is wrapped as a storage error. Storage implementations are
// free to return plain errors, this normalises them at the boundary.
func AsStorageError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return NewStorageError(op, key, err)
}
