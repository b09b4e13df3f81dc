// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// These are the constants specified for maximums in individual scripts.
const (
	MaxOpsPerScript       = 201   // Max number of non-push operations.
	MaxPubKeysPerMultiSig = 20    // Multisig can't have more sigs than this.
	MaxScriptElementSize  = 520   // Max bytes pushable to the stack.
	MaxScriptSize         = 10000 // Max bytes a single script may have.
	maxStackSize          = 244   // Max combined depth of the data and alt stacks.
)

const (
	// signatureSize is the size of both Schnorr and ECDSA signatures, without
	// the trailing hash type byte.
	signatureSize = 64

	// schnorrPubKeyLength is the size of an x-only Schnorr public key.
	schnorrPubKeyLength = 32

	// ecdsaPubKeyLength is the size of a compressed ECDSA public key.
	ecdsaPubKeyLength = 33

	// scriptHashLength is the size of the blake2b hash committed to by a
	// pay-to-script-hash script public key.
	scriptHashLength = 32
)

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OpFalse, or Op1 through Op16.
func isSmallInt(op *opcode) bool {
	if op.value == OpFalse || (op.value >= Op1 && op.value <= Op16) {
		return true
	}
	return false
}

// isScriptHash returns true if the script passed is a pay-to-script-hash
// transaction, false otherwise.
func isScriptHash(pops []parsedOpcode) bool {
	return len(pops) == 3 &&
		pops[0].opcode.value == OpBlake2b &&
		pops[1].opcode.value == OpData32 &&
		pops[2].opcode.value == OpEqual
}

// IsPayToScriptHash returns true if the script is in the standard
// pay-to-script-hash (P2SH) format, false otherwise.
func IsPayToScriptHash(script []byte) bool {
	pops, err := parseScript(script)
	if err != nil {
		return false
	}
	return isScriptHash(pops)
}

// isPushOnly returns true if the script only pushes data, false otherwise.
func isPushOnly(pops []parsedOpcode) bool {
	// NOTE: This function does NOT verify opcodes directly since it is
	// internal and is only called with parsed opcodes for scripts that did
	// not have any parse errors. Thus, consensus is properly maintained.

	for _, pop := range pops {
		// All opcodes up to Op16 are data push instructions.
		// NOTE: This does consider OpReserved to be a data push
		// instruction, but execution of OpReserved will fail anyways
		// and matches the behavior required by consensus.
		if pop.opcode.value > Op16 {
			return false
		}
	}
	return true
}

// IsPushOnlyScript returns whether or not the passed script only pushes data.
//
// False will be returned when the script does not parse.
func IsPushOnlyScript(script []byte) bool {
	pops, err := parseScript(script)
	if err != nil {
		return false
	}
	return isPushOnly(pops)
}

// parseScript preparses the script in bytes into a list of parsedOpcodes while
// applying a number of sanity checks.
func parseScript(script []byte) ([]parsedOpcode, error) {
	return parseScriptTemplate(script, &opcodeArray)
}

// parseScriptTemplate is the same as parseScript but allows the passing of the
// template list for testing purposes. On error we return the list of parsed
// opcodes so far.
func parseScriptTemplate(script []byte, opcodes *[256]opcode) ([]parsedOpcode, error) {
	retScript := make([]parsedOpcode, 0, len(script))
	for i := 0; i < len(script); {
		instr := script[i]
		op := &opcodes[instr]
		pop := parsedOpcode{opcode: op}

		switch {
		// No additional data. Note that some of the opcodes, notably
		// Op1Negate, Op0, and Op[1-16] represent the data
		// themselves.
		case op.length == 1:
			i++

		// Data pushes of specific lengths -- OpData[1-75].
		case op.length > 1:
			if len(script[i:]) < op.length {
				str := fmt.Sprintf("opcode %s requires %d "+
					"bytes, but script only has %d remaining",
					op.name, op.length, len(script[i:]))
				return retScript, scriptError(ErrMalformedPush,
					str)
			}

			// Slice out the data.
			pop.data = script[i+1 : i+op.length]
			i += op.length

		// Data pushes with parsed lengths -- OpPushData[1,2,4].
		case op.length < 0:
			var l uint
			off := i + 1

			if len(script[off:]) < -op.length {
				str := fmt.Sprintf("opcode %s requires %d "+
					"bytes, but script only has %d remaining",
					op.name, -op.length, len(script[off:]))
				return retScript, scriptError(ErrMalformedPush,
					str)
			}

			// Next -length bytes are little endian length of data.
			switch op.length {
			case -1:
				l = uint(script[off])
			case -2:
				l = uint(binary.LittleEndian.Uint16(script[off:]))
			case -4:
				l = uint(binary.LittleEndian.Uint32(script[off:]))
			default:
				str := fmt.Sprintf("invalid opcode length %d",
					op.length)
				return retScript, scriptError(ErrMalformedPush,
					str)
			}

			// Move offset to beginning of the data.
			off += -op.length

			// Disallow entries that do not fit script or were
			// sign extended.
			if int(l) > len(script[off:]) || int(l) < 0 {
				str := fmt.Sprintf("opcode %s pushes %d bytes, "+
					"but script only has %d remaining",
					op.name, int(l), len(script[off:]))
				return retScript, scriptError(ErrMalformedPush,
					str)
			}

			pop.data = script[off : off+int(l)]
			i += 1 - op.length + int(l)
		}

		retScript = append(retScript, pop)
	}

	return retScript, nil
}

// unparseScript reversed the action of parseScript and returns the
// parsedOpcodes as a list of bytes
func unparseScript(pops []parsedOpcode) ([]byte, error) {
	script := make([]byte, 0, len(pops))
	for _, pop := range pops {
		b, err := pop.bytes()
		if err != nil {
			return nil, err
		}
		script = append(script, b...)
	}
	return script, nil
}

// DisasmString formats a disassembled script for one line printing. When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended. In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	opcodes, err := parseScript(script)
	for _, pop := range opcodes {
		disbuf.WriteString(pop.print(true))
		disbuf.WriteByte(' ')
	}
	disstr := strings.TrimSuffix(disbuf.String(), " ")
	if err != nil {
		disstr += "[error]"
	}
	return disstr, err
}

// GetSigOpCount provides a quick count of the number of signature operations
// in a script. A checksig operation counts for 1, and a checkmultisig counts
// for the number of keys when it is preceded by a small integer, or for
// MaxPubKeysPerMultiSig otherwise. If the script fails to parse, then the
// count up to the point of failure is returned.
func GetSigOpCount(script []byte) int {
	// We don't check error since parseScript returns the parsed-up-to-error
	// list of pops.
	pops, _ := parseScript(script)
	return getSigOpCount(pops)
}

// GetPreciseSigOpCount returns the number of signature operations in
// scriptPubKey. When scriptPubKey is pay-to-script-hash, the redeem script
// is taken from the last push of scriptSig and counted instead.
func GetPreciseSigOpCount(scriptSig, scriptPubKey []byte) int {
	pops, _ := parseScript(scriptPubKey)
	if !isScriptHash(pops) {
		return getSigOpCount(pops)
	}

	sigPops, err := parseScript(scriptSig)
	if err != nil || len(sigPops) == 0 || !isPushOnly(sigPops) {
		return 0
	}

	redeemScript := sigPops[len(sigPops)-1].data
	if redeemScript == nil {
		return 0
	}

	redeemPops, _ := parseScript(redeemScript)
	return getSigOpCount(redeemPops)
}

func getSigOpCount(pops []parsedOpcode) int {
	numSigs := 0
	for i, pop := range pops {
		switch pop.opcode.value {
		case OpCheckSig, OpCheckSigVerify, OpCheckSigECDSA:
			numSigs++
		case OpCheckMultiSig, OpCheckMultiSigVerify, OpCheckMultiSigECDSA:
			if i > 0 && pops[i-1].opcode.value >= Op1 &&
				pops[i-1].opcode.value <= Op16 {
				numSigs += int(pops[i-1].opcode.value - (Op1 - 1))
			} else {
				numSigs += MaxPubKeysPerMultiSig
			}
		}
	}

	return numSigs
}
