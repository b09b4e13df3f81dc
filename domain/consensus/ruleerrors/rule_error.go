package ruleerrors

import (
	"fmt"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Script check failures. Match them with errors.Is; the wrapping error names
// the failing input and the outpoint it spends.
var (
	// ErrScriptMalformed indicates that a script could not be parsed, or
	// that an engine could not be built for it.
	ErrScriptMalformed = newRuleError("ErrScriptMalformed")

	// ErrScriptValidation indicates that executing the scripts of an input
	// failed, including signature verification failures.
	ErrScriptValidation = newRuleError("ErrScriptValidation")
)

// RuleError is a sentinel identifying the kind of a verification failure.
// It optionally wraps the underlying error.
type RuleError struct {
	message string
	inner   error
}

func (e RuleError) Error() string {
	if e.inner == nil {
		return e.message
	}
	return e.message + ": " + e.inner.Error()
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message}
}

// ErrMissingTxOut lists the outpoints of inputs that carry no UTXO entry.
type ErrMissingTxOut struct {
	MissingOutpoints []*externalapi.DomainOutpoint
}

func (e ErrMissingTxOut) Error() string {
	return fmt.Sprintf("missing the following outpoint: %v", e.MissingOutpoints)
}

// NewErrMissingTxOut returns an ErrMissingTxOut wrapped in a RuleError
func NewErrMissingTxOut(missingOutpoints []*externalapi.DomainOutpoint) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingTxOut",
		inner:   ErrMissingTxOut{missingOutpoints},
	})
}
