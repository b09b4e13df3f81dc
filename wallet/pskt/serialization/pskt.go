package serialization

import (
	"bytes"
	"sort"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Fields of PSKT
const (
	psktGlobal = 1
	psktInput  = 2
	psktOutput = 3
)

// Fields of Global
const (
	globalVersion           = 1
	globalTxVersion         = 2
	globalFallbackLockTime  = 3
	globalInputsModifiable  = 4
	globalOutputsModifiable = 5
	globalInputCount        = 6
	globalOutputCount       = 7
	globalXPub              = 8
	globalID                = 9
	globalProprietary       = 10
)

// Fields of Input
const (
	inputUTXOEntry        = 1
	inputPreviousOutpoint = 2
	inputSequence         = 3
	inputMinTime          = 4
	inputPartialSig       = 5
	inputSighashType      = 6
	inputRedeemScript     = 7
	inputSigOpCount       = 8
	inputBip32Derivation  = 9
	inputFinalScriptSig   = 10
	inputProprietary      = 11
)

// Fields of Output
const (
	outputAmount          = 1
	outputScriptPublicKey = 2
	outputRedeemScript    = 3
	outputBip32Derivation = 4
	outputProprietary     = 5
)

// Fields of the map entries
const (
	entryKey   = 1
	entryValue = 2
)

// Fields of PartialSig
const (
	partialSigPublicKey = 1
	partialSigType      = 2
	partialSigSignature = 3
)

// Fields of KeySource
const (
	keySourceFingerprint = 1
	keySourcePathIndex   = 2
)

// SerializePSKT encodes document
func SerializePSKT(document *pskt.Inner) ([]byte, error) {
	if document == nil {
		return nil, errors.New("cannot serialize a nil document")
	}

	b := appendBytes(nil, psktGlobal, serializeGlobal(&document.Global))
	for _, input := range document.Inputs {
		b = appendBytes(b, psktInput, serializeInput(input))
	}
	for _, output := range document.Outputs {
		b = appendBytes(b, psktOutput, serializeOutput(output))
	}
	return b, nil
}

// DeserializePSKT decodes a document encoded by SerializePSKT. The result is
// meant to be passed to one of the pskt Resume functions, which validate it.
func DeserializePSKT(serialized []byte) (*pskt.Inner, error) {
	fields, err := parseFields(serialized)
	if err != nil {
		return nil, err
	}

	document := &pskt.Inner{}
	for _, f := range fields {
		switch f.number {
		case psktGlobal:
			var global *pskt.Global
			global, err = deserializeGlobal(&f)
			if err == nil {
				document.Global = *global
			}
		case psktInput:
			var input *pskt.Input
			input, err = deserializeInput(&f)
			if err == nil {
				document.Inputs = append(document.Inputs, input)
			}
		case psktOutput:
			var output *pskt.Output
			output, err = deserializeOutput(&f)
			if err == nil {
				document.Outputs = append(document.Outputs, output)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return document, nil
}

func serializeGlobal(global *pskt.Global) []byte {
	b := appendVarint(nil, globalVersion, uint64(global.Version))
	b = appendVarint(b, globalTxVersion, uint64(global.TxVersion))
	if global.FallbackLockTime != nil {
		b = appendVarint(b, globalFallbackLockTime, *global.FallbackLockTime)
	}
	b = appendBool(b, globalInputsModifiable, global.InputsModifiable)
	b = appendBool(b, globalOutputsModifiable, global.OutputsModifiable)
	b = appendVarint(b, globalInputCount, uint64(global.InputCount))
	b = appendVarint(b, globalOutputCount, uint64(global.OutputCount))
	for _, xPub := range sortedKeys(global.XPubs) {
		keySource := global.XPubs[xPub]
		entry := appendBytes(nil, entryKey, []byte(xPub))
		entry = appendBytes(entry, entryValue, serializeKeySource(&keySource))
		b = appendBytes(b, globalXPub, entry)
	}
	if global.ID != nil {
		b = appendBytes(b, globalID, global.ID.ByteSlice())
	}
	return appendProprietaries(b, globalProprietary, global.Proprietaries)
}

func deserializeGlobal(f *field) (*pskt.Global, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	global := &pskt.Global{}
	for _, f := range fields {
		switch f.number {
		case globalVersion:
			var version uint8
			version, err = f.uint8()
			global.Version = pskt.Version(version)
		case globalTxVersion:
			global.TxVersion, err = f.uint16()
		case globalFallbackLockTime:
			var fallbackLockTime uint64
			fallbackLockTime, err = f.uint64()
			global.FallbackLockTime = &fallbackLockTime
		case globalInputsModifiable:
			global.InputsModifiable, err = f.bool()
		case globalOutputsModifiable:
			global.OutputsModifiable, err = f.bool()
		case globalInputCount:
			global.InputCount, err = deserializeCount(&f)
		case globalOutputCount:
			global.OutputCount, err = deserializeCount(&f)
		case globalXPub:
			var xPub []byte
			var keySource *pskt.KeySource
			xPub, keySource, err = deserializeXPub(&f)
			if err == nil {
				if global.XPubs == nil {
					global.XPubs = make(map[string]pskt.KeySource)
				}
				global.XPubs[string(xPub)] = *keySource
			}
		case globalID:
			global.ID, err = deserializeTransactionID(&f)
		case globalProprietary:
			global.Proprietaries, err = deserializeProprietary(&f, global.Proprietaries)
		}
		if err != nil {
			return nil, errors.Wrap(err, "global")
		}
	}
	return global, nil
}

func deserializeCount(f *field) (int, error) {
	count, err := f.uint32()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func deserializeXPub(f *field) ([]byte, *pskt.KeySource, error) {
	fields, err := f.message()
	if err != nil {
		return nil, nil, err
	}
	var xPub []byte
	var keySource *pskt.KeySource
	for _, f := range fields {
		switch f.number {
		case entryKey:
			xPub, err = f.copyBytes()
		case entryValue:
			keySource, err = deserializeKeySource(&f)
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "xpub")
		}
	}
	if keySource == nil {
		return nil, nil, errors.Wrap(ErrMalformed, "xpub without a key source")
	}
	return xPub, keySource, nil
}

func serializeInput(input *pskt.Input) []byte {
	var b []byte
	if input.UTXOEntry != nil {
		b = appendBytes(b, inputUTXOEntry, serializeUTXOEntry(input.UTXOEntry))
	}
	b = appendBytes(b, inputPreviousOutpoint, serializeOutpoint(&input.PreviousOutpoint))
	if input.Sequence != nil {
		b = appendVarint(b, inputSequence, *input.Sequence)
	}
	if input.MinTime != nil {
		b = appendVarint(b, inputMinTime, *input.MinTime)
	}
	for _, publicKey := range sortedPublicKeys(input.PartialSigs) {
		signature := input.PartialSigs[publicKey]
		entry := appendBytes(nil, partialSigPublicKey, publicKey[:])
		entry = appendVarint(entry, partialSigType, uint64(signature.Type))
		entry = appendBytes(entry, partialSigSignature, signature.Bytes[:])
		b = appendBytes(b, inputPartialSig, entry)
	}
	b = appendVarint(b, inputSighashType, uint64(input.SighashType))
	if len(input.RedeemScript) > 0 {
		b = appendBytes(b, inputRedeemScript, input.RedeemScript)
	}
	if input.SigOpCount != nil {
		b = appendVarint(b, inputSigOpCount, uint64(*input.SigOpCount))
	}
	b = appendDerivations(b, inputBip32Derivation, input.Bip32Derivations)
	if len(input.FinalScriptSig) > 0 {
		b = appendBytes(b, inputFinalScriptSig, input.FinalScriptSig)
	}
	return appendProprietaries(b, inputProprietary, input.Proprietaries)
}

func deserializeInput(f *field) (*pskt.Input, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	input := &pskt.Input{}
	for _, f := range fields {
		switch f.number {
		case inputUTXOEntry:
			input.UTXOEntry, err = deserializeUTXOEntry(&f)
		case inputPreviousOutpoint:
			var outpoint *externalapi.DomainOutpoint
			outpoint, err = deserializeOutpoint(&f)
			if err == nil {
				input.PreviousOutpoint = *outpoint
			}
		case inputSequence:
			var sequence uint64
			sequence, err = f.uint64()
			input.Sequence = &sequence
		case inputMinTime:
			var minTime uint64
			minTime, err = f.uint64()
			input.MinTime = &minTime
		case inputPartialSig:
			err = deserializePartialSig(&f, input)
		case inputSighashType:
			var sighashType uint8
			sighashType, err = f.uint8()
			input.SighashType = consensushashing.SigHashType(sighashType)
		case inputRedeemScript:
			input.RedeemScript, err = f.copyBytes()
		case inputSigOpCount:
			var sigOpCount uint8
			sigOpCount, err = f.uint8()
			input.SigOpCount = &sigOpCount
		case inputBip32Derivation:
			input.Bip32Derivations, err = deserializeDerivation(&f, input.Bip32Derivations)
		case inputFinalScriptSig:
			input.FinalScriptSig, err = f.copyBytes()
		case inputProprietary:
			input.Proprietaries, err = deserializeProprietary(&f, input.Proprietaries)
		}
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
	}
	return input, nil
}

func deserializePartialSig(f *field, input *pskt.Input) error {
	fields, err := f.message()
	if err != nil {
		return err
	}

	var publicKeyBytes, signatureBytes []byte
	var signatureType uint8
	for _, f := range fields {
		switch f.number {
		case partialSigPublicKey:
			publicKeyBytes, err = f.copyBytes()
		case partialSigType:
			signatureType, err = f.uint8()
		case partialSigSignature:
			signatureBytes, err = f.copyBytes()
		}
		if err != nil {
			return errors.Wrap(err, "partial signature")
		}
	}

	publicKey, err := pskt.NewPublicKey(publicKeyBytes)
	if err != nil {
		return errors.Wrapf(ErrMalformed, "partial signature: %s", err)
	}
	signature, err := pskt.NewSignature(pskt.SignatureType(signatureType), signatureBytes)
	if err != nil {
		return errors.Wrapf(ErrMalformed, "partial signature: %s", err)
	}
	if input.PartialSigs == nil {
		input.PartialSigs = make(map[pskt.PublicKey]pskt.Signature)
	}
	input.PartialSigs[publicKey] = signature
	return nil
}

func serializeOutput(output *pskt.Output) []byte {
	b := appendVarint(nil, outputAmount, output.Amount)
	if output.ScriptPublicKey != nil {
		b = appendBytes(b, outputScriptPublicKey, serializeScriptPublicKey(output.ScriptPublicKey))
	}
	if len(output.RedeemScript) > 0 {
		b = appendBytes(b, outputRedeemScript, output.RedeemScript)
	}
	b = appendDerivations(b, outputBip32Derivation, output.Bip32Derivations)
	return appendProprietaries(b, outputProprietary, output.Proprietaries)
}

func deserializeOutput(f *field) (*pskt.Output, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	output := &pskt.Output{}
	for _, f := range fields {
		switch f.number {
		case outputAmount:
			output.Amount, err = f.uint64()
		case outputScriptPublicKey:
			output.ScriptPublicKey, err = deserializeScriptPublicKey(&f)
		case outputRedeemScript:
			output.RedeemScript, err = f.copyBytes()
		case outputBip32Derivation:
			output.Bip32Derivations, err = deserializeDerivation(&f, output.Bip32Derivations)
		case outputProprietary:
			output.Proprietaries, err = deserializeProprietary(&f, output.Proprietaries)
		}
		if err != nil {
			return nil, errors.Wrap(err, "output")
		}
	}
	return output, nil
}

func serializeKeySource(keySource *pskt.KeySource) []byte {
	b := appendBytes(nil, keySourceFingerprint, keySource.Fingerprint[:])
	for _, index := range keySource.DerivationPath {
		b = appendVarint(b, keySourcePathIndex, uint64(index))
	}
	return b
}

func deserializeKeySource(f *field) (*pskt.KeySource, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	keySource := &pskt.KeySource{DerivationPath: pskt.DerivationPath{}}
	for _, f := range fields {
		switch f.number {
		case keySourceFingerprint:
			var fingerprint []byte
			fingerprint, err = f.copyBytes()
			if err == nil && len(fingerprint) != pskt.FingerprintSize {
				err = errors.Wrapf(ErrMalformed, "fingerprint of %d bytes", len(fingerprint))
			}
			copy(keySource.Fingerprint[:], fingerprint)
		case keySourcePathIndex:
			var index uint32
			index, err = f.uint32()
			keySource.DerivationPath = append(keySource.DerivationPath, index)
		}
		if err != nil {
			return nil, errors.Wrap(err, "key source")
		}
	}
	return keySource, nil
}

// appendDerivations appends one entry per public key. A key without a known
// key source is written without a value.
func appendDerivations(b []byte, number protowire.Number, derivations map[pskt.PublicKey]*pskt.KeySource) []byte {
	for _, publicKey := range sortedPublicKeys(derivations) {
		entry := appendBytes(nil, entryKey, publicKey[:])
		if keySource := derivations[publicKey]; keySource != nil {
			entry = appendBytes(entry, entryValue, serializeKeySource(keySource))
		}
		b = appendBytes(b, number, entry)
	}
	return b
}

func deserializeDerivation(f *field, derivations map[pskt.PublicKey]*pskt.KeySource) (
	map[pskt.PublicKey]*pskt.KeySource, error) {

	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	var publicKeyBytes []byte
	var keySource *pskt.KeySource
	for _, f := range fields {
		switch f.number {
		case entryKey:
			publicKeyBytes, err = f.copyBytes()
		case entryValue:
			keySource, err = deserializeKeySource(&f)
		}
		if err != nil {
			return nil, errors.Wrap(err, "derivation")
		}
	}
	publicKey, err := pskt.NewPublicKey(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "derivation: %s", err)
	}

	if derivations == nil {
		derivations = make(map[pskt.PublicKey]*pskt.KeySource)
	}
	derivations[publicKey] = keySource
	return derivations, nil
}

func appendProprietaries(b []byte, number protowire.Number, proprietaries map[string][]byte) []byte {
	for _, key := range sortedKeys(proprietaries) {
		entry := appendBytes(nil, entryKey, []byte(key))
		entry = appendBytes(entry, entryValue, proprietaries[key])
		b = appendBytes(b, number, entry)
	}
	return b
}

func deserializeProprietary(f *field, proprietaries map[string][]byte) (map[string][]byte, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	var key, value []byte
	for _, f := range fields {
		switch f.number {
		case entryKey:
			key, err = f.copyBytes()
		case entryValue:
			value, err = f.copyBytes()
		}
		if err != nil {
			return nil, errors.Wrap(err, "proprietary")
		}
	}

	if proprietaries == nil {
		proprietaries = make(map[string][]byte)
	}
	proprietaries[string(key)] = value
	return proprietaries, nil
}

// Map entries are written in key order so equal documents encode to equal
// bytes.

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedPublicKeys[V any](m map[pskt.PublicKey]V) []pskt.PublicKey {
	keys := make([]pskt.PublicKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}
