// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
)

// mustParseShortForm parses the passed short form script and returns the
// resulting bytes. It panics if an error occurs. This is only used in the
// tests as a helper since the only way it can fail is if there is an error in
// the test source code.
func mustParseShortForm(script string) []byte {
	s, err := parseShortForm(script)
	if err != nil {
		panic("invalid short form script in test source: err " +
			err.Error() + ", script: " + script)
	}

	return s
}

var (
	testSchnorrPubKey = bytes.Repeat([]byte{0x11}, 32)
	testECDSAPubKey   = append([]byte{0x02}, bytes.Repeat([]byte{0x22}, 32)...)
)

// TestScriptClass ensures all the scripts in scriptClassTests have the
// expected class.
func TestScriptClass(t *testing.T) {
	t.Parallel()

	schnorrMultiSig, err := MultiSigScript([][]byte{testSchnorrPubKey, testSchnorrPubKey}, 1, false)
	if err != nil {
		t.Fatalf("MultiSigScript: %v", err)
	}
	ecdsaMultiSig, err := MultiSigScript([][]byte{testECDSAPubKey}, 1, true)
	if err != nil {
		t.Fatalf("MultiSigScript: %v", err)
	}

	tests := []struct {
		name   string
		script []byte
		class  ScriptClass
	}{
		{
			name:   "Pay Pubkey",
			script: append(append([]byte{OpData32}, testSchnorrPubKey...), OpCheckSig),
			class:  PubKeyTy,
		},
		{
			name:   "Pay Pubkey ECDSA",
			script: append(append([]byte{OpData33}, testECDSAPubKey...), OpCheckSigECDSA),
			class:  PubKeyECDSATy,
		},
		{
			name:   "Schnorr key with the ECDSA opcode",
			script: append(append([]byte{OpData32}, testSchnorrPubKey...), OpCheckSigECDSA),
			class:  NonStandardTy,
		},
		{
			name: "script hash",
			script: mustParseShortForm("BLAKE2B 0x20 0x433ec2ac1ffa1b7b7d027f564529c57197f" +
				"9ae88433ec2ac1ffa1b7b7d027f56 EQUAL"),
			class: ScriptHashTy,
		},
		{
			name:   "schnorr multisig",
			script: schnorrMultiSig,
			class:  MultiSigTy,
		},
		{
			name:   "ecdsa multisig",
			script: ecdsaMultiSig,
			class:  MultiSigTy,
		},
		{
			name: "multisig with a wrong key count",
			script: append(append([]byte{Op1, OpData32}, testSchnorrPubKey...),
				Op2, OpCheckMultiSig),
			class: NonStandardTy,
		},
		{
			name:   "malformed",
			script: []byte{OpData32, 0x01},
			class:  NonStandardTy,
		},
		{
			name:   "empty",
			script: nil,
			class:  NonStandardTy,
		},
		{
			name:   "nulldata",
			script: mustParseShortForm("RETURN 0"),
			class:  NonStandardTy,
		},
	}

	for _, test := range tests {
		class := GetScriptClass(test.script)
		if class != test.class {
			t.Errorf("%s: expected %s got %s (script %x)", test.name,
				test.class, class, test.script)
			continue
		}
	}
}

// TestStringifyClass tests the "String" method of ScriptClass.
func TestStringifyClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		class    ScriptClass
		stringed string
	}{
		{name: "nonstandardty", class: NonStandardTy, stringed: "nonstandard"},
		{name: "pubkey", class: PubKeyTy, stringed: "pubkey"},
		{name: "pubkeyecdsa", class: PubKeyECDSATy, stringed: "pubkeyecdsa"},
		{name: "scripthash", class: ScriptHashTy, stringed: "scripthash"},
		{name: "multisig", class: MultiSigTy, stringed: "multisig"},
		{name: "broken", class: ScriptClass(255), stringed: "Invalid"},
	}

	for _, test := range tests {
		typeString := test.class.String()
		if typeString != test.stringed {
			t.Errorf("%s: got %#q, want %#q", test.name,
				typeString, test.stringed)
		}
	}
}

func TestExtractPubKey(t *testing.T) {
	t.Parallel()

	schnorrScriptPublicKey, err := PayToPubKey(testSchnorrPubKey)
	if err != nil {
		t.Fatalf("PayToPubKey: %v", err)
	}
	pubKey, isECDSA, err := ExtractPubKey(schnorrScriptPublicKey)
	if err != nil {
		t.Fatalf("ExtractPubKey: %v", err)
	}
	if isECDSA || !bytes.Equal(pubKey, testSchnorrPubKey) {
		t.Fatalf("ExtractPubKey: got %x (ECDSA %t)", pubKey, isECDSA)
	}

	ecdsaScriptPublicKey, err := PayToPubKeyECDSA(testECDSAPubKey)
	if err != nil {
		t.Fatalf("PayToPubKeyECDSA: %v", err)
	}
	pubKey, isECDSA, err = ExtractPubKey(ecdsaScriptPublicKey)
	if err != nil {
		t.Fatalf("ExtractPubKey: %v", err)
	}
	if !isECDSA || !bytes.Equal(pubKey, testECDSAPubKey) {
		t.Fatalf("ExtractPubKey: got %x (ECDSA %t)", pubKey, isECDSA)
	}

	scriptHash, err := PayToScriptHash([]byte{Op1})
	if err != nil {
		t.Fatalf("PayToScriptHash: %v", err)
	}
	_, _, err = ExtractPubKey(scriptHash)
	if err == nil {
		t.Fatalf("ExtractPubKey: expected an error for a script hash")
	}

	_, _, err = ExtractPubKey(&externalapi.ScriptPublicKey{Script: schnorrScriptPublicKey.Script, Version: 1})
	if err == nil {
		t.Fatalf("ExtractPubKey: expected an error for an unknown version")
	}
}

func TestPayToPubKeyBadLength(t *testing.T) {
	t.Parallel()

	_, err := PayToPubKey(testECDSAPubKey)
	if !IsErrorCode(err, ErrPubKeyFormat) {
		t.Errorf("PayToPubKey: want ErrPubKeyFormat, got %v", err)
	}
	_, err = PayToPubKeyECDSA(testSchnorrPubKey)
	if !IsErrorCode(err, ErrPubKeyFormat) {
		t.Errorf("PayToPubKeyECDSA: want ErrPubKeyFormat, got %v", err)
	}
}

// TestMultiSigScript ensures the MultiSigScript function returns the expected
// scripts and errors.
func TestMultiSigScript(t *testing.T) {
	t.Parallel()

	otherSchnorrPubKey := bytes.Repeat([]byte{0x33}, 32)

	tests := []struct {
		keys      [][]byte
		nrequired int
		isECDSA   bool
		expected  []byte
		errorCode ErrorCode
		expectErr bool
	}{
		{
			keys:      [][]byte{testSchnorrPubKey, otherSchnorrPubKey},
			nrequired: 1,
			expected: append(append(append(append([]byte{Op1, OpData32}, testSchnorrPubKey...),
				OpData32), otherSchnorrPubKey...), Op2, OpCheckMultiSig),
		},
		{
			keys:      [][]byte{testECDSAPubKey},
			nrequired: 1,
			isECDSA:   true,
			expected:  append(append([]byte{Op1, OpData33}, testECDSAPubKey...), Op1, OpCheckMultiSigECDSA),
		},
		{
			keys:      [][]byte{testSchnorrPubKey},
			nrequired: 2,
			errorCode: ErrTooManyRequiredSigs,
			expectErr: true,
		},
		{
			keys:      [][]byte{testECDSAPubKey},
			nrequired: 1,
			errorCode: ErrPubKeyFormat,
			expectErr: true,
		},
		{
			keys:      make([][]byte, MaxPubKeysPerMultiSig+1),
			nrequired: 1,
			errorCode: ErrInvalidPubKeyCount,
			expectErr: true,
		},
	}

	for i, test := range tests {
		script, err := MultiSigScript(test.keys, test.nrequired, test.isECDSA)
		if test.expectErr {
			if !IsErrorCode(err, test.errorCode) {
				t.Errorf("MultiSigScript #%d: want error code %s, got %v", i, test.errorCode, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("MultiSigScript #%d: unexpected error: %v", i, err)
			continue
		}
		if !bytes.Equal(script, test.expected) {
			t.Errorf("MultiSigScript #%d got: %x\nwant: %x", i, script, test.expected)
			continue
		}

		pubKeys, requiredSigs, isECDSA, err := ExtractMultiSigPubKeys(script)
		if err != nil {
			t.Errorf("ExtractMultiSigPubKeys #%d: unexpected error: %v", i, err)
			continue
		}
		if requiredSigs != test.nrequired || isECDSA != test.isECDSA || len(pubKeys) != len(test.keys) {
			t.Errorf("ExtractMultiSigPubKeys #%d: got %d keys, %d required, ECDSA %t",
				i, len(pubKeys), requiredSigs, isECDSA)
			continue
		}
		for j, pubKey := range pubKeys {
			if !bytes.Equal(pubKey, test.keys[j]) {
				t.Errorf("ExtractMultiSigPubKeys #%d: key %d is %x, want %x", i, j, pubKey, test.keys[j])
			}
		}

		numPubKeys, numSigs, err := CalcMultiSigStats(script)
		if err != nil {
			t.Errorf("CalcMultiSigStats #%d: unexpected error: %v", i, err)
			continue
		}
		if numPubKeys != len(test.keys) || numSigs != test.nrequired {
			t.Errorf("CalcMultiSigStats #%d: got %d of %d", i, numSigs, numPubKeys)
		}
	}
}

func TestSigOpCount(t *testing.T) {
	t.Parallel()

	multiSig, err := MultiSigScript([][]byte{testSchnorrPubKey, testSchnorrPubKey, testSchnorrPubKey}, 2, false)
	if err != nil {
		t.Fatalf("MultiSigScript: %v", err)
	}
	scriptHash, err := PayToScriptHash(multiSig)
	if err != nil {
		t.Fatalf("PayToScriptHash: %v", err)
	}
	signatureScript, err := PayToScriptHashSignatureScript(multiSig, []byte{Op0, Op0})
	if err != nil {
		t.Fatalf("PayToScriptHashSignatureScript: %v", err)
	}

	tests := []struct {
		name            string
		signatureScript []byte
		scriptPublicKey []byte
		imprecise       int
		precise         int
	}{
		{
			name:            "checksig",
			scriptPublicKey: mustParseShortForm("CHECKSIG CHECKSIGECDSA CHECKSIGVERIFY"),
			imprecise:       3,
			precise:         3,
		},
		{
			name:            "bare multisig",
			scriptPublicKey: multiSig,
			imprecise:       3,
			precise:         3,
		},
		{
			name:            "multisig without a key count",
			scriptPublicKey: mustParseShortForm("CHECKMULTISIG"),
			imprecise:       MaxPubKeysPerMultiSig,
			precise:         MaxPubKeysPerMultiSig,
		},
		{
			name:            "script hash",
			signatureScript: signatureScript,
			scriptPublicKey: scriptHash.Script,
			imprecise:       0,
			precise:         3,
		},
	}

	for _, test := range tests {
		if count := GetSigOpCount(test.scriptPublicKey); count != test.imprecise {
			t.Errorf("%s: GetSigOpCount got %d, want %d", test.name, count, test.imprecise)
		}
		if count := GetPreciseSigOpCount(test.signatureScript, test.scriptPublicKey); count != test.precise {
			t.Errorf("%s: GetPreciseSigOpCount got %d, want %d", test.name, count, test.precise)
		}
	}
}

func TestDisasmString(t *testing.T) {
	t.Parallel()

	script := mustParseShortForm("0 1 16 -1 0x02 0xabcd BLAKE2B EQUAL")
	disasm, err := DisasmString(script)
	if err != nil {
		t.Fatalf("DisasmString: %v", err)
	}
	expected := "0 1 16 -1 abcd OP_BLAKE2B OP_EQUAL"
	if disasm != expected {
		t.Fatalf("DisasmString: got %q, want %q", disasm, expected)
	}

	_, err = DisasmString([]byte{OpData2, 0x01})
	if !IsErrorCode(err, ErrMalformedPush) {
		t.Fatalf("DisasmString: want ErrMalformedPush, got %v", err)
	}
}
