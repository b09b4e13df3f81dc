// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"golang.org/x/crypto/blake2b"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockDAG.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyTy                         // Pay to pubkey.
	PubKeyECDSATy                    // Pay to pubkey ECDSA.
	ScriptHashTy                     // Pay to script hash.
	MultiSigTy                       // Bare multi signature.
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyTy:      "pubkey",
	PubKeyECDSATy: "pubkeyecdsa",
	ScriptHashTy:  "scripthash",
	MultiSigTy:    "multisig",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// isPayToPubkey returns true if the script passed is a pay-to-pubkey
// transaction, false otherwise.
func isPayToPubkey(pops []parsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].opcode.value == OpData32 &&
		pops[1].opcode.value == OpCheckSig
}

// isPayToPubkeyECDSA returns true if the script passed is an ECDSA
// pay-to-pubkey transaction, false otherwise.
func isPayToPubkeyECDSA(pops []parsedOpcode) bool {
	return len(pops) == 2 &&
		pops[0].opcode.value == OpData33 &&
		pops[1].opcode.value == OpCheckSigECDSA
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op *opcode) int {
	if op.value == Op0 {
		return 0
	}

	return int(op.value - (Op1 - 1))
}

// isMultiSig returns true if the passed script is a multisig transaction, false
// otherwise. The keys must all be of the size expected by the closing opcode.
func isMultiSig(pops []parsedOpcode) bool {
	// The absolute minimum is 1 pubkey:
	// OpFalse/Op1-16 pubkey Op1 OpCheckMultiSig
	l := len(pops)
	if l < 4 {
		return false
	}
	if !isSmallInt(pops[0].opcode) {
		return false
	}
	if !isSmallInt(pops[l-2].opcode) {
		return false
	}

	keyLength := schnorrPubKeyLength
	switch pops[l-1].opcode.value {
	case OpCheckMultiSig:
	case OpCheckMultiSigECDSA:
		keyLength = ecdsaPubKeyLength
	default:
		return false
	}

	// Verify the number of pubkeys specified matches the actual number
	// of pubkeys provided.
	if l-2-1 != asSmallInt(pops[l-2].opcode) {
		return false
	}

	for _, pop := range pops[1 : l-2] {
		if len(pop.data) != keyLength {
			return false
		}
	}
	return true
}

// typeOfScript returns the type of the script being inspected from the known
// standard types.
func typeOfScript(pops []parsedOpcode) ScriptClass {
	switch {
	case isPayToPubkey(pops):
		return PubKeyTy
	case isPayToPubkeyECDSA(pops):
		return PubKeyECDSATy
	case isScriptHash(pops):
		return ScriptHashTy
	case isMultiSig(pops):
		return MultiSigTy
	}
	return NonStandardTy
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	pops, err := parseScript(script)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(pops)
}

// ExtractPubKey returns the public key a pay-to-pubkey script public key
// pays to, along with whether it is an ECDSA key. An error is returned for
// any other script class.
func ExtractPubKey(scriptPublicKey *externalapi.ScriptPublicKey) (pubKey []byte, isECDSA bool, err error) {
	if scriptPublicKey.Version > constants.MaxScriptPublicKeyVersion {
		return nil, false, scriptError(ErrInternal,
			fmt.Sprintf("unknown script public key version %d", scriptPublicKey.Version))
	}
	pops, err := parseScript(scriptPublicKey.Script)
	if err != nil {
		return nil, false, err
	}

	switch typeOfScript(pops) {
	case PubKeyTy:
		return pops[0].data, false, nil
	case PubKeyECDSATy:
		return pops[0].data, true, nil
	}
	return nil, false, scriptError(ErrInternal, "script is not a pay-to-pubkey script")
}

// ExtractMultiSigPubKeys returns the public keys of a multisig script in the
// order they appear in it, along with the number of required signatures and
// whether the script verifies ECDSA signatures.
func ExtractMultiSigPubKeys(script []byte) (pubKeys [][]byte, requiredSigs int, isECDSA bool, err error) {
	pops, err := parseScript(script)
	if err != nil {
		return nil, 0, false, err
	}
	if !isMultiSig(pops) {
		return nil, 0, false, scriptError(ErrNotMultisigScript,
			"script is not a multisig script")
	}

	pubKeys = make([][]byte, 0, len(pops)-3)
	for _, pop := range pops[1 : len(pops)-2] {
		pubKeys = append(pubKeys, pop.data)
	}
	isECDSA = pops[len(pops)-1].opcode.value == OpCheckMultiSigECDSA
	return pubKeys, asSmallInt(pops[0].opcode), isECDSA, nil
}

// CalcMultiSigStats returns the number of public keys and signatures from
// a multi-signature transaction script. The passed script MUST already be
// known to be a multi-signature script.
func CalcMultiSigStats(script []byte) (int, int, error) {
	pops, err := parseScript(script)
	if err != nil {
		return 0, 0, err
	}

	// A multi-signature script is of the pattern:
	//  NUM_SIGS PUBKEY PUBKEY PUBKEY... NUM_PUBKEYS OP_CHECKMULTISIG
	// Therefore the number of signatures is the oldest item on the stack
	// and the number of pubkeys is the 2nd to last. Also, the absolute
	// minimum for a multi-signature script is 1 pubkey, so at least 4
	// items must be on the stack per:
	//  OP_1 PUBKEY OP_1 OP_CHECKMULTISIG
	if len(pops) < 4 {
		str := fmt.Sprintf("script %x is not a multisig script", script)
		return 0, 0, scriptError(ErrNotMultisigScript, str)
	}

	numSigs := asSmallInt(pops[0].opcode)
	numPubKeys := asSmallInt(pops[len(pops)-2].opcode)
	return numPubKeys, numSigs, nil
}

// PayToPubKey creates a new script to pay a transaction output to a 32-byte
// x-only Schnorr public key.
func PayToPubKey(pubKey []byte) (*externalapi.ScriptPublicKey, error) {
	if len(pubKey) != schnorrPubKeyLength {
		str := fmt.Sprintf("public key of length %d, expected %d",
			len(pubKey), schnorrPubKeyLength)
		return nil, scriptError(ErrPubKeyFormat, str)
	}
	script, err := NewScriptBuilder().
		AddData(pubKey).
		AddOp(OpCheckSig).
		Script()
	if err != nil {
		return nil, err
	}
	return &externalapi.ScriptPublicKey{Script: script, Version: constants.MaxScriptPublicKeyVersion}, nil
}

// PayToPubKeyECDSA creates a new script to pay a transaction output to a
// 33-byte compressed ECDSA public key.
func PayToPubKeyECDSA(pubKey []byte) (*externalapi.ScriptPublicKey, error) {
	if len(pubKey) != ecdsaPubKeyLength {
		str := fmt.Sprintf("public key of length %d, expected %d",
			len(pubKey), ecdsaPubKeyLength)
		return nil, scriptError(ErrPubKeyFormat, str)
	}
	script, err := NewScriptBuilder().
		AddData(pubKey).
		AddOp(OpCheckSigECDSA).
		Script()
	if err != nil {
		return nil, err
	}
	return &externalapi.ScriptPublicKey{Script: script, Version: constants.MaxScriptPublicKeyVersion}, nil
}

// PayToScriptHash creates a new script public key paying to the blake2b hash
// of the given redeem script.
func PayToScriptHash(redeemScript []byte) (*externalapi.ScriptPublicKey, error) {
	scriptHash := blake2b.Sum256(redeemScript)
	script, err := NewScriptBuilder().
		AddOp(OpBlake2b).
		AddData(scriptHash[:]).
		AddOp(OpEqual).
		Script()
	if err != nil {
		return nil, err
	}
	return &externalapi.ScriptPublicKey{Script: script, Version: constants.MaxScriptPublicKeyVersion}, nil
}

// PayToScriptHashSignatureScript creates a new script to spend a
// pay-to-script-hash output: the given push-only signature script followed by
// a push of the redeem script.
func PayToScriptHashSignatureScript(redeemScript []byte, signature []byte) ([]byte, error) {
	redeemScriptAsData, err := NewScriptBuilder().AddData(redeemScript).Script()
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, signature...), redeemScriptAsData...), nil
}

// MultiSigScript returns a valid script for a multisignature redemption where
// nRequired of the keys in pubKeys are required to have signed the
// transaction for success. Schnorr keys must be 32 bytes and ECDSA keys 33
// bytes. An Error with the error code ErrTooManyRequiredSigs will be
// returned if nRequired is larger than the number of keys provided.
func MultiSigScript(pubKeys [][]byte, nRequired int, isECDSA bool) ([]byte, error) {
	if len(pubKeys) < nRequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nRequired, len(pubKeys))
		return nil, scriptError(ErrTooManyRequiredSigs, str)
	}
	if len(pubKeys) > MaxPubKeysPerMultiSig {
		str := fmt.Sprintf("too many public keys: %d > %d",
			len(pubKeys), MaxPubKeysPerMultiSig)
		return nil, scriptError(ErrInvalidPubKeyCount, str)
	}

	keyLength := schnorrPubKeyLength
	checkOpcode := byte(OpCheckMultiSig)
	if isECDSA {
		keyLength = ecdsaPubKeyLength
		checkOpcode = OpCheckMultiSigECDSA
	}

	builder := NewScriptBuilder().AddInt64(int64(nRequired))
	for i, key := range pubKeys {
		if len(key) != keyLength {
			str := fmt.Sprintf("public key #%d has length %d, "+
				"expected %d", i, len(key), keyLength)
			return nil, scriptError(ErrPubKeyFormat, str)
		}
		builder.AddData(key)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(checkOpcode)

	return builder.Script()
}
