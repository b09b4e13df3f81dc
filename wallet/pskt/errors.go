package pskt

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrHandleConsumed is returned, or raised as a panic by operations
	// without an error result, when a stage handle is used after it was
	// moved into another stage.
	ErrHandleConsumed = errors.New("pskt handle was already consumed by a stage transition")

	// ErrInputsNotModifiable is returned when an input is added after the
	// inputs were locked.
	ErrInputsNotModifiable = errors.New("inputs are not modifiable")

	// ErrOutputsNotModifiable is returned when an output is added after the
	// outputs were locked.
	ErrOutputsNotModifiable = errors.New("outputs are not modifiable")

	// ErrOutOfBounds is returned when an input index is not smaller than the
	// input count.
	ErrOutOfBounds = errors.New("input index out of bounds")

	// ErrSignatureCountMismatch is returned when a SignFunc does not return
	// exactly one result per input.
	ErrSignatureCountMismatch = errors.New("signature count does not match the input count")

	// ErrTxNotFinalized is returned when an extractor is requested before a
	// successful finalize.
	ErrTxNotFinalized = errors.New("transaction is not finalized")

	// ErrUnsupportedVersion is returned for documents of an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported pskt version")
)

// CombineScope names the part of a document a combine conflict occurred in.
type CombineScope string

// The scopes of a CombineError.
const (
	ScopeGlobal CombineScope = "global"
	ScopeInput  CombineScope = "input"
	ScopeOutput CombineScope = "output"
)

// CombineError reports a field that is set to different values in the two
// documents being combined. Index is -1 for global fields.
type CombineError struct {
	Scope CombineScope
	Index int
	Field string
}

func (e *CombineError) Error() string {
	if e.Scope == ScopeGlobal {
		return fmt.Sprintf("combine conflict in global field %s", e.Field)
	}
	return fmt.Sprintf("combine conflict in %s %d field %s", e.Scope, e.Index, e.Field)
}

// FinalizeSigsCountError is returned when a FinalizeFunc does not return
// exactly one signature script per input.
type FinalizeSigsCountError struct {
	Expected int
	Actual   int
}

func (e *FinalizeSigsCountError) Error() string {
	return fmt.Sprintf("signatures count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// EmptySignatureError is returned when a FinalizeFunc returns an empty
// signature script for the input at Index.
type EmptySignatureError struct {
	Index int
}

func (e *EmptySignatureError) Error() string {
	return fmt.Sprintf("signature script at index %d is empty", e.Index)
}

// FinalizeCallbackError wraps an error returned by a FinalizeFunc.
type FinalizeCallbackError struct {
	Err error
}

func (e *FinalizeCallbackError) Error() string {
	return fmt.Sprintf("finalize callback failed: %s", e.Err)
}

// Unwrap satisfies the errors.Unwrap interface
func (e *FinalizeCallbackError) Unwrap() error {
	return e.Err
}
