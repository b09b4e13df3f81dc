// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
)

// TestBadPC sets the pc to a deliberately bad result then confirms that Step()
// and Disasm fail correctly.
func TestBadPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scriptIdx int
		scriptOff int
	}{
		{scriptIdx: 2, scriptOff: 0},
		{scriptIdx: 0, scriptOff: 2},
	}

	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{OpNop}, Version: 0}
	tx := createSpendingTx([]byte{Op1}, scriptPublicKey)

	for _, test := range tests {
		vm, err := NewEngine(scriptPublicKey, tx, 0, ScriptNoFlags, nil, nil)
		if err != nil {
			t.Errorf("Failed to create script: %v", err)
		}

		// set to after all scripts
		vm.scriptIdx = test.scriptIdx
		vm.scriptOff = test.scriptOff

		_, err = vm.Step()
		if err == nil {
			t.Errorf("Step with invalid pc (%v) succeeds!", test)
			continue
		}

		_, err = vm.DisasmPC()
		if err == nil {
			t.Errorf("DisasmPC with invalid pc (%v) succeeds!",
				test)
		}
	}
}

// TestCheckErrorCondition tests the execute early test in CheckErrorCondition()
// since most code paths are tested elsewhere.
func TestCheckErrorCondition(t *testing.T) {
	t.Parallel()

	// tx with almost empty scripts.
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{
		OpNop, OpNop, OpNop, OpNop, OpNop, OpNop, OpNop, OpNop, OpNop, OpNop, OpTrue,
	}, Version: 0}
	tx := createSpendingTx(nil, scriptPublicKey)

	vm, err := NewEngine(scriptPublicKey, tx, 0, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Errorf("failed to create script: %v", err)
	}

	for i := 0; i < len(scriptPublicKey.Script)-1; i++ {
		done, err := vm.Step()
		if err != nil {
			t.Fatalf("failed to step %dth time: %v", i, err)
		}
		if done {
			t.Fatalf("finshed early on %dth time", i)
		}

		err = vm.CheckErrorCondition(false)
		if !IsErrorCode(err, ErrScriptUnfinished) {
			t.Fatalf("got unexepected error %v on %dth iteration",
				err, i)
		}
	}
	done, err := vm.Step()
	if err != nil {
		t.Fatalf("final step failed %v", err)
	}
	if !done {
		t.Fatalf("final step isn't done!")
	}

	err = vm.CheckErrorCondition(false)
	if err != nil {
		t.Errorf("unexpected error %v on final check", err)
	}
}

func TestNewEngineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		signatureScript []byte
		scriptPublicKey []byte
		txIdx           int
		errorCode       ErrorCode
	}{
		{
			name:            "input index out of range",
			signatureScript: []byte{Op1},
			scriptPublicKey: []byte{Op1},
			txIdx:           1,
			errorCode:       ErrInvalidIndex,
		},
		{
			name:            "negative input index",
			signatureScript: []byte{Op1},
			scriptPublicKey: []byte{Op1},
			txIdx:           -1,
			errorCode:       ErrInvalidIndex,
		},
		{
			name:            "both scripts empty",
			signatureScript: nil,
			scriptPublicKey: nil,
			errorCode:       ErrEvalFalse,
		},
		{
			name:            "signature script is not push only",
			signatureScript: []byte{Op1, OpDup},
			scriptPublicKey: []byte{OpEqual},
			errorCode:       ErrNotPushOnly,
		},
		{
			name:            "script public key too big",
			signatureScript: []byte{Op1},
			scriptPublicKey: bytes.Repeat([]byte{OpNop}, MaxScriptSize+1),
			errorCode:       ErrScriptTooBig,
		},
		{
			name:            "malformed script public key",
			signatureScript: []byte{Op1},
			scriptPublicKey: []byte{OpData2, 0x01},
			errorCode:       ErrMalformedPush,
		},
	}

	for _, test := range tests {
		scriptPublicKey := &externalapi.ScriptPublicKey{Script: test.scriptPublicKey, Version: 0}
		tx := createSpendingTx(test.signatureScript, scriptPublicKey)
		_, err := NewEngine(scriptPublicKey, tx, test.txIdx, ScriptNoFlags, nil, nil)
		if !IsErrorCode(err, test.errorCode) {
			t.Errorf("%s: want error code %s, got %v", test.name, test.errorCode, err)
		}
	}
}

func TestUnknownScriptPublicKeyVersion(t *testing.T) {
	t.Parallel()

	// The script itself would fail if it were executed.
	scriptPublicKey := &externalapi.ScriptPublicKey{
		Script:  []byte{OpReturn},
		Version: constants.MaxScriptPublicKeyVersion + 1,
	}
	tx := createSpendingTx([]byte{OpNop}, scriptPublicKey)

	vm, err := NewEngine(scriptPublicKey, tx, 0, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	err = vm.Execute()
	if err != nil {
		t.Fatalf("a script public key of an unknown version is expected to be accepted, got %v", err)
	}

	vm, err = NewEngine(scriptPublicKey, tx, 0, StandardVerifyFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	err = vm.Execute()
	if !IsErrorCode(err, ErrDiscourageUpgradableNOPs) {
		t.Fatalf("want ErrDiscourageUpgradableNOPs, got %v", err)
	}
}

func TestPayToScriptHash(t *testing.T) {
	t.Parallel()

	redeemScript := []byte{Op2, OpEqual}
	scriptPublicKey, err := PayToScriptHash(redeemScript)
	if err != nil {
		t.Fatalf("PayToScriptHash: %v", err)
	}
	if !IsPayToScriptHash(scriptPublicKey.Script) {
		t.Fatalf("IsPayToScriptHash returned false for %x", scriptPublicKey.Script)
	}

	tests := []struct {
		name         string
		arguments    []byte
		redeemScript []byte
		errorCode    ErrorCode
		expectErr    bool
	}{
		{name: "valid", arguments: []byte{Op2}, redeemScript: redeemScript},
		{name: "redeem script evaluates to false", arguments: []byte{Op3}, redeemScript: redeemScript,
			errorCode: ErrEvalFalse, expectErr: true},
		{name: "another redeem script", arguments: []byte{Op2}, redeemScript: []byte{Op3, OpEqual},
			errorCode: ErrEvalFalse, expectErr: true},
		{name: "redeem script leaves extra items", arguments: []byte{Op2, Op2}, redeemScript: redeemScript,
			errorCode: ErrCleanStack, expectErr: true},
	}

	for _, test := range tests {
		signatureScript, err := PayToScriptHashSignatureScript(test.redeemScript, test.arguments)
		if err != nil {
			t.Fatalf("%s: PayToScriptHashSignatureScript: %v", test.name, err)
		}
		tx := createSpendingTx(signatureScript, scriptPublicKey)
		vm, err := NewEngine(scriptPublicKey, tx, 0, ScriptNoFlags, nil, nil)
		if err != nil {
			t.Fatalf("%s: NewEngine: %v", test.name, err)
		}
		err = vm.Execute()
		if !test.expectErr {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", test.name, err)
			}
			continue
		}
		if !IsErrorCode(err, test.errorCode) {
			t.Errorf("%s: want error code %s, got %v", test.name, test.errorCode, err)
		}
	}
}

func TestDisasmScript(t *testing.T) {
	t.Parallel()

	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{Op1, OpEqual}, Version: 0}
	tx := createSpendingTx([]byte{Op1}, scriptPublicKey)
	tx.Inputs[0].UTXOEntry = utxo.NewUTXOEntry(0, scriptPublicKey, false, 0)

	vm, err := NewEngine(scriptPublicKey, tx, 0, ScriptNoFlags, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	disasm, err := vm.DisasmScript(1)
	if err != nil {
		t.Fatalf("DisasmScript: %v", err)
	}
	expected := "01:0000: OP_1\n01:0001: OP_EQUAL\n"
	if disasm != expected {
		t.Fatalf("DisasmScript: got %q, want %q", disasm, expected)
	}

	_, err = vm.DisasmScript(2)
	if !IsErrorCode(err, ErrInvalidIndex) {
		t.Fatalf("want ErrInvalidIndex, got %v", err)
	}
}
