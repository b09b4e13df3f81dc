// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
	"github.com/pkg/errors"
)

// scriptTest describes a signature script and script public key pair along
// with the flags to execute it with and the expected result.
type scriptTest struct {
	sigScript    string
	scriptPubKey string
	flags        string
	expected     string
	comment      string
}

// name returns a descriptive test name for the given reference script test.
func (test *scriptTest) name() string {
	if test.comment != "" {
		return fmt.Sprintf("test (%s)", test.comment)
	}
	return fmt.Sprintf("test ([%s, %s, %s])", test.sigScript,
		test.scriptPubKey, test.flags)
}

// parse hex string into a []byte.
func parseHex(tok string) ([]byte, error) {
	if !strings.HasPrefix(tok, "0x") {
		return nil, errors.New("not a hex number")
	}
	return hex.DecodeString(tok[2:])
}

// shortFormOps holds a map of opcode names to values for use in short form
// parsing. It is declared here so it only needs to be created once.
var shortFormOps map[string]byte

// parseShortForm parses a string into a script as follows:
//   - Opcodes other than the push opcodes and unknown are present as
//     either OP_NAME or just NAME
//   - Plain numbers are made into push operations
//   - Numbers beginning with 0x are inserted into the []byte as-is (so
//     0x14 is OP_DATA_20)
//   - Single quoted strings are pushed as data
//   - Anything else is an error
func parseShortForm(script string) ([]byte, error) {
	// Only create the short form opcode map once.
	if shortFormOps == nil {
		ops := make(map[string]byte)
		for opcodeName, opcodeValue := range OpcodeByName {
			if strings.Contains(opcodeName, "OP_UNKNOWN") {
				continue
			}
			ops[opcodeName] = opcodeValue

			// The opcodes named OP_# can't have the OP_ prefix
			// stripped or they would conflict with the plain
			// numbers. Also, since OP_FALSE and OP_TRUE are
			// aliases for the OP_0, and OP_1, respectively, they
			// have the same value, so detect those by name and
			// allow them.
			if (opcodeName == "OP_FALSE" || opcodeName == "OP_TRUE") ||
				(opcodeValue != Op0 && (opcodeValue < Op1 ||
					opcodeValue > Op16)) {

				ops[strings.TrimPrefix(opcodeName, "OP_")] = opcodeValue
			}
		}
		shortFormOps = ops
	}

	// Split only does one separator so convert all \n and tab into  space.
	script = strings.Replace(script, "\n", " ", -1)
	script = strings.Replace(script, "\t", " ", -1)
	tokens := strings.Split(script, " ")
	builder := NewScriptBuilder()

	for _, tok := range tokens {
		if len(tok) == 0 {
			continue
		}
		// if parses as a plain number
		if num, err := strconv.ParseInt(tok, 10, 64); err == nil {
			builder.AddInt64(num)
			continue
		} else if bts, err := parseHex(tok); err == nil {
			// Concatenate the bytes manually since the test code
			// intentionally creates scripts that are too large and
			// would cause the builder to error otherwise.
			if builder.err == nil {
				builder.script = append(builder.script, bts...)
			}
		} else if len(tok) >= 2 &&
			tok[0] == '\'' && tok[len(tok)-1] == '\'' {
			builder.AddFullData([]byte(tok[1 : len(tok)-1]))
		} else if opcode, ok := shortFormOps[tok]; ok {
			builder.AddOp(opcode)
		} else {
			return nil, errors.Errorf("bad token %q", tok)
		}

	}
	return builder.Script()
}

// parseScriptFlags parses the provided flags string from the format used in the
// reference tests into ScriptFlags suitable for use in the script engine.
func parseScriptFlags(flagStr string) (ScriptFlags, error) {
	var flags ScriptFlags

	sFlags := strings.Split(flagStr, ",")
	for _, flag := range sFlags {
		switch flag {
		case "":
			// Nothing.
		case "DISCOURAGE_UPGRADABLE_NOPS":
			flags |= ScriptDiscourageUpgradableNops
		default:
			return flags, errors.Errorf("invalid flag: %s", flag)
		}
	}
	return flags, nil
}

// parseExpectedResult parses the provided expected result string into allowed
// script error codes. An error is returned if the expected result string is
// not supported.
func parseExpectedResult(expected string) ([]ErrorCode, error) {
	switch expected {
	case "OK":
		return nil, nil
	case "UNKNOWN_ERROR":
		return []ErrorCode{ErrNumberTooBig, ErrMinimalData}, nil
	case "PUBKEYFORMAT":
		return []ErrorCode{ErrPubKeyFormat}, nil
	case "EVAL_FALSE":
		return []ErrorCode{ErrEvalFalse, ErrEmptyStack}, nil
	case "EMPTY_STACK":
		return []ErrorCode{ErrEmptyStack}, nil
	case "EQUALVERIFY":
		return []ErrorCode{ErrEqualVerify}, nil
	case "NULLFAIL":
		return []ErrorCode{ErrNullFail}, nil
	case "SIG_HASHTYPE":
		return []ErrorCode{ErrInvalidSigHashType}, nil
	case "SIG_PUSHONLY":
		return []ErrorCode{ErrNotPushOnly}, nil
	case "CLEANSTACK":
		return []ErrorCode{ErrCleanStack}, nil
	case "BAD_OPCODE":
		return []ErrorCode{ErrReservedOpcode, ErrMalformedPush}, nil
	case "UNBALANCED_CONDITIONAL":
		return []ErrorCode{ErrUnbalancedConditional,
			ErrInvalidStackOperation}, nil
	case "OP_RETURN":
		return []ErrorCode{ErrEarlyReturn}, nil
	case "VERIFY":
		return []ErrorCode{ErrVerify}, nil
	case "INVALID_STACK_OPERATION", "INVALID_ALTSTACK_OPERATION":
		return []ErrorCode{ErrInvalidStackOperation}, nil
	case "DISABLED_OPCODE":
		return []ErrorCode{ErrDisabledOpcode}, nil
	case "DISCOURAGE_UPGRADABLE_NOPS":
		return []ErrorCode{ErrDiscourageUpgradableNOPs}, nil
	case "PUSH_SIZE":
		return []ErrorCode{ErrElementTooBig}, nil
	case "OP_COUNT":
		return []ErrorCode{ErrTooManyOperations}, nil
	case "STACK_SIZE":
		return []ErrorCode{ErrStackOverflow}, nil
	case "SCRIPT_SIZE":
		return []ErrorCode{ErrScriptTooBig}, nil
	case "PUBKEY_COUNT":
		return []ErrorCode{ErrInvalidPubKeyCount}, nil
	case "SIG_COUNT":
		return []ErrorCode{ErrInvalidSignatureCount}, nil
	case "MINIMALDATA":
		return []ErrorCode{ErrMinimalData}, nil
	case "UNSATISFIED_LOCKTIME":
		return []ErrorCode{ErrUnsatisfiedLockTime}, nil
	case "MINIMALIF":
		return []ErrorCode{ErrMinimalIf}, nil
	}

	return nil, errors.Errorf("unrecognized expected result in test data: %v",
		expected)
}

// createSpendingTx generates a basic spending transaction given the passed
// signature and public key scripts.
func createSpendingTx(sigScript []byte, scriptPubKey *externalapi.ScriptPublicKey) *externalapi.DomainTransaction {
	outpoint := externalapi.DomainOutpoint{
		TransactionID: externalapi.DomainTransactionID{},
		Index:         ^uint32(0),
	}
	input := &externalapi.DomainTransactionInput{
		PreviousOutpoint: outpoint,
		SignatureScript:  []byte{Op0, Op0},
		Sequence:         constants.MaxTxInSequenceNum,
	}
	output := &externalapi.DomainTransactionOutput{Value: 0, ScriptPublicKey: scriptPubKey}
	coinbaseTx := &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  []*externalapi.DomainTransactionInput{input},
		Outputs: []*externalapi.DomainTransactionOutput{output},
	}

	outpoint = externalapi.DomainOutpoint{
		TransactionID: *consensushashing.TransactionID(coinbaseTx),
		Index:         0,
	}
	input = &externalapi.DomainTransactionInput{
		PreviousOutpoint: outpoint,
		SignatureScript:  sigScript,
		Sequence:         constants.MaxTxInSequenceNum,
		UTXOEntry:        utxo.NewUTXOEntry(0, scriptPubKey, false, 0),
	}
	output = &externalapi.DomainTransactionOutput{Value: 0, ScriptPublicKey: &externalapi.ScriptPublicKey{}}
	spendingTx := &externalapi.DomainTransaction{
		Version: 0,
		Inputs:  []*externalapi.DomainTransactionInput{input},
		Outputs: []*externalapi.DomainTransactionOutput{output},
	}

	return spendingTx
}

// scriptTests holds the reference script pairs. Signature checks are covered
// separately since they need real keys.
var scriptTests = []scriptTest{
	{"1", "", "", "OK", "signature script alone leaves true"},
	{"", "1", "", "OK", "empty signature script"},
	{"", "", "", "EVAL_FALSE", "both scripts empty"},
	{"0", "", "", "EVAL_FALSE", "false on top"},
	{"1 1", "", "", "CLEANSTACK", "extra item left on the stack"},
	{"1", "DUP", "", "CLEANSTACK", "duplicated top left on the stack"},
	{"", "1 2 ADD 3 EQUAL", "", "OK", ""},
	{"", "5 3 SUB 2 NUMEQUAL", "", "OK", ""},
	{"", "-1 ABS 1 EQUAL", "", "OK", ""},
	{"", "7 2 7 WITHIN NOT", "", "OK", "the maximum is excluded from the range"},
	{"", "0 IF 1 ELSE 2 ENDIF 2 EQUAL", "", "OK", ""},
	{"", "1 NOTIF 0 ELSE 1 ENDIF", "", "OK", ""},
	{"", "1 IF 0 ELSE 1 ENDIF", "", "EVAL_FALSE", ""},
	{"", "2 IF 1 ENDIF", "", "MINIMALIF", "if condition must be empty or 0x01"},
	{"", "0x02 0x0100 IF 1 ENDIF", "", "MINIMALIF", "two byte if condition"},
	{"", "0 IF CAT ENDIF 1", "", "DISABLED_OPCODE", "disabled opcode in unexecuted branch"},
	{"", "0 IF MUL ENDIF 1", "", "DISABLED_OPCODE", ""},
	{"", "0 IF VERIF ENDIF 1", "", "BAD_OPCODE", "VERIF is illegal everywhere"},
	{"", "0 IF VERNOTIF ENDIF 1", "", "BAD_OPCODE", ""},
	{"", "0 IF RESERVED ENDIF 1", "", "OK", "reserved opcode in unexecuted branch"},
	{"", "1 IF RESERVED ENDIF 1", "", "BAD_OPCODE", ""},
	{"", "1 IF VER ENDIF 1", "", "BAD_OPCODE", ""},
	{"", "1 0xb2", "", "BAD_OPCODE", "unknown opcode executed"},
	{"", "0 IF 0xb2 ENDIF 1", "", "OK", "unknown opcode in unexecuted branch"},
	{"1", "IF 1", "", "UNBALANCED_CONDITIONAL", ""},
	{"", "ENDIF 1", "", "UNBALANCED_CONDITIONAL", ""},
	{"", "1 ELSE", "", "UNBALANCED_CONDITIONAL", ""},
	{"", "RETURN", "", "OP_RETURN", ""},
	{"", "0 VERIFY 1", "", "VERIFY", ""},
	{"", "1 2 EQUALVERIFY 1", "", "EQUALVERIFY", ""},
	{"", "DROP 1", "", "INVALID_STACK_OPERATION", ""},
	{"", "1 TOALTSTACK FROMALTSTACK", "", "OK", ""},
	{"", "FROMALTSTACK 1", "", "INVALID_ALTSTACK_OPERATION", ""},
	{"", "1 2 3 ROT 1 EQUALVERIFY 2DROP 1", "", "OK", ""},
	{"", "1 2 SWAP 1 EQUALVERIFY 2 EQUAL", "", "OK", ""},
	{"", "1 0 PICK EQUAL", "", "OK", ""},
	{"", "7 DEPTH 1 EQUALVERIFY", "", "OK", ""},
	{"0x4c01 0x01", "", "", "MINIMALDATA", "PUSHDATA1 of a small integer"},
	{"0x01 0x05", "DROP 1", "", "MINIMALDATA", "OP_DATA_1 of a small integer"},
	{"", "0x02 0x0100 0 ADD DROP 1", "", "UNKNOWN_ERROR", "non-minimal number"},
	{"", "0x05 0x0100000000 0 ADD DROP 1", "", "UNKNOWN_ERROR", "five byte number"},
	{"NOP", "1", "", "SIG_PUSHONLY", "signature script must be push only"},
	{"'abc'", "SHA256 0x20 0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad EQUAL", "", "OK", ""},
	{"0", "BLAKE2B 0x20 0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8 EQUALVERIFY 1", "", "OK", "blake2b of the empty string"},
	{"0", "BLAKE2B 0x20 0x0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8 EQUAL", "", "EVAL_FALSE", "pay-to-script-hash of an empty redeem script"},
	{"'abc'", "SIZE 3 EQUALVERIFY DROP 1", "", "OK", ""},
	{"", "0 CHECKLOCKTIMEVERIFY 1", "", "UNSATISFIED_LOCKTIME", "finalized input"},
	{"", "1 CHECKLOCKTIMEVERIFY 1", "", "UNSATISFIED_LOCKTIME", "lock time in the future"},
	{"", "0x09 0x000000000000000001 CHECKLOCKTIMEVERIFY 1", "", "UNKNOWN_ERROR", "nine byte lock time"},
	{"", "0x08 0x0000000000000080 CHECKSEQUENCEVERIFY 1", "", "OK", "disabled sequence operand is a NOP"},
	{"", "0 CHECKSEQUENCEVERIFY 1", "", "UNSATISFIED_LOCKTIME", "tx sequence has the disabled bit"},
	{"", "0 0 CHECKSIG NOT", "", "OK", "empty signature pushes false"},
	{"", "0 0 CHECKMULTISIG", "", "OK", "zero of zero multisig"},
	{"", "0 21 CHECKMULTISIG", "", "PUBKEY_COUNT", ""},
	{"", "0 0x20 0x0000000000000000000000000000000000000000000000000000000000000000 2 0x20 0x0000000000000000000000000000000000000000000000000000000000000000 1 CHECKMULTISIG", "", "SIG_COUNT", ""},
	{"", strings.Repeat("NOP ", MaxOpsPerScript+1) + "1", "", "OP_COUNT", ""},
	{"", strings.Repeat("NOP ", MaxOpsPerScript) + "1", "", "OK", "exactly the op limit"},
	{"", strings.Repeat("1 ", maxStackSize+1) + strings.Repeat("DROP ", maxStackSize), "", "STACK_SIZE", ""},
	{"", "'" + strings.Repeat("a", MaxScriptElementSize+1) + "' DROP 1", "", "PUSH_SIZE", ""},
	{"", "'" + strings.Repeat("a", MaxScriptElementSize) + "' DROP 1", "", "OK", "exactly the element limit"},
	{"", "0x" + strings.Repeat("61", MaxScriptSize+1), "", "SCRIPT_SIZE", ""},
}

// testScripts ensures all of the passed script tests execute with the expected
// results with or without using a signature cache, as specified by the
// parameter.
func testScripts(t *testing.T, tests []scriptTest, useSigCache bool) {
	// Create a signature cache to use only if requested.
	var sigCache *SigCache
	if useSigCache {
		sigCache = NewSigCache(10)
	}

	for _, test := range tests {
		name := test.name()

		scriptSig, err := parseShortForm(test.sigScript)
		if err != nil {
			t.Errorf("%s: can't parse signature script: %v", name,
				err)
			continue
		}

		scriptPubKeyBytes, err := parseShortForm(test.scriptPubKey)
		if err != nil {
			t.Errorf("%s: can't parse public key script: %v", name,
				err)
			continue
		}
		scriptPubKey := &externalapi.ScriptPublicKey{Script: scriptPubKeyBytes, Version: 0}

		flags, err := parseScriptFlags(test.flags)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}

		// Convert the expected result string into the allowed script
		// error codes. This is necessary because txscript is more
		// fine grained with its errors than the reference test data, so
		// some of the reference test data errors map to more than one
		// possibility.
		allowedErrorCodes, err := parseExpectedResult(test.expected)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}

		// Generate a transaction pair such that one spends from the
		// other and the provided signature and public key scripts are
		// used, then create a new engine to execute the scripts.
		tx := createSpendingTx(scriptSig, scriptPubKey)

		vm, err := NewEngine(scriptPubKey, tx, 0, flags, sigCache, nil)
		if err == nil {
			err = vm.Execute()
		}

		// Ensure there were no errors when the expected result is OK.
		if test.expected == "OK" {
			if err != nil {
				t.Errorf("%s failed to execute: %v", name, err)
			}
			continue
		}

		// At this point an error was expected so ensure the result of
		// the execution matches it.
		success := false
		for _, code := range allowedErrorCodes {
			if IsErrorCode(err, code) {
				success = true
				break
			}
		}
		if !success {
			var scriptErr Error
			if ok := errors.As(err, &scriptErr); ok {
				t.Errorf("%s: want error codes %v, got %v", name,
					allowedErrorCodes, scriptErr.ErrorCode)
				continue
			}
			t.Errorf("%s: want error codes %v, got err: %v (%T)",
				name, allowedErrorCodes, err, err)
			continue
		}
	}
}

// TestScripts ensures all of the reference script pairs execute with the
// expected results.
func TestScripts(t *testing.T) {
	// Disable non-test logs
	logLevel := log.Level()
	log.SetLevel(logger.LevelOff)
	defer log.SetLevel(logLevel)

	// Run all script tests with and without the signature cache.
	testScripts(t, scriptTests, true)
	testScripts(t, scriptTests, false)
}
