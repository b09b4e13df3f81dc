package ruleerrors

import (
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func TestNewErrMissingTxOut(t *testing.T) {
	outer := NewErrMissingTxOut([]*externalapi.DomainOutpoint{{TransactionID: externalapi.DomainTransactionID{}, Index: 5}})
	expectedOuterErr := "ErrMissingTxOut: missing the following outpoint: [(0000000000000000000000000000000000000000000000000000000000000000: 5)]"
	inner := &ErrMissingTxOut{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrMissingTxOut: Outer should contain ErrMissingTxOut in it")
	}

	if len(inner.MissingOutpoints) != 1 {
		t.Fatalf("TestNewErrMissingTxOut: Expected len(inner.MissingOutpoints) 1, found: %d", len(inner.MissingOutpoints))
	}
	if inner.MissingOutpoints[0].Index != 5 {
		t.Fatalf("TestNewErrMissingTxOut: Expected 5. found: %d", inner.MissingOutpoints[0].Index)
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestNewErrMissingTxOut: Outer should contain RuleError in it")
	}
	if rule.message != "ErrMissingTxOut" {
		t.Fatalf("TestNewErrMissingTxOut: Expected message = 'ErrMissingTxOut', found: '%s'", rule.message)
	}

	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrMissingTxOut: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestWrappedRuleError(t *testing.T) {
	wrapped := errors.Wrapf(ErrScriptValidation, "input %d", 3)
	if !errors.Is(wrapped, ErrScriptValidation) {
		t.Fatalf("TestWrappedRuleError: a wrapped ErrScriptValidation was not matched")
	}
	if errors.Is(wrapped, ErrScriptMalformed) {
		t.Fatalf("TestWrappedRuleError: a wrapped ErrScriptValidation matched ErrScriptMalformed")
	}
	if wrapped.Error() != "input 3: ErrScriptValidation" {
		t.Fatalf("TestWrappedRuleError: unexpected message %q", wrapped.Error())
	}
}
