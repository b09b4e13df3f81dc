package consensushashing

import (
	"sync"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// SighashReusedValues holds all fields used in the calculation of a transaction's sigHash, that are
// the same for all transaction inputs.
// Reuse of such values prevents the quadratic hashing problem.
//
// Each value is computed lazily at most once, so a single instance may be shared by
// goroutines that verify different inputs of the same transaction. It must never be
// shared between different transactions.
type SighashReusedValues struct {
	previousOutputsOnce sync.Once
	previousOutputsHash *externalapi.DomainHash

	sequencesOnce sync.Once
	sequencesHash *externalapi.DomainHash

	sigOpCountsOnce sync.Once
	sigOpCountsHash *externalapi.DomainHash

	outputsOnce sync.Once
	outputsHash *externalapi.DomainHash

	payloadOnce sync.Once
	payloadHash *externalapi.DomainHash
}

// CalculateSignatureHashSchnorr will, given a script and hash type calculate the signature hash
// to be used for signing and verification for Schnorr.
// This returns error only if one of the provided parameters are consensus-invalid.
// A nil reusedValues computes every shared value from scratch.
func CalculateSignatureHashSchnorr(tx *externalapi.DomainTransaction, inputIndex int, hashType SigHashType,
	reusedValues *SighashReusedValues) (*externalapi.DomainHash, error) {

	if !hashType.IsStandardSigHashType() {
		return nil, errors.Errorf("SigHashType %d is not a valid SigHash type", hashType)
	}

	if inputIndex < 0 || inputIndex >= len(tx.Inputs) {
		return nil, errors.Errorf("input index %d is out of range for a transaction with %d inputs",
			inputIndex, len(tx.Inputs))
	}

	txIn := tx.Inputs[inputIndex]
	if txIn.UTXOEntry == nil {
		return nil, errors.Errorf("tx.Inputs[%d].UTXOEntry must be filled", inputIndex)
	}
	if reusedValues == nil {
		reusedValues = &SighashReusedValues{}
	}

	return calculateSignatureHash(tx, inputIndex, txIn, hashType, reusedValues), nil
}

// CalculateSignatureHashECDSA will, given a script and hash type calculate the signature hash
// to be used for signing and verification for ECDSA.
// This returns error only if one of the provided parameters are consensus-invalid.
// A nil reusedValues computes every shared value from scratch.
func CalculateSignatureHashECDSA(tx *externalapi.DomainTransaction, inputIndex int, hashType SigHashType,
	reusedValues *SighashReusedValues) (*externalapi.DomainHash, error) {

	hash, err := CalculateSignatureHashSchnorr(tx, inputIndex, hashType, reusedValues)
	if err != nil {
		return nil, err
	}

	hashWriter := hashes.NewTransactionSigningHashECDSAWriter()
	hashWriter.InfallibleWrite(hash.ByteSlice())

	return hashWriter.Finalize(), nil
}

func calculateSignatureHash(tx *externalapi.DomainTransaction, inputIndex int, txIn *externalapi.DomainTransactionInput,
	hashType SigHashType, reusedValues *SighashReusedValues) *externalapi.DomainHash {

	hashWriter := hashes.NewTransactionSigningHashWriter()
	infallibleWrite(writeUint16(hashWriter, tx.Version))

	previousOutputsHash := getPreviousOutputsHash(tx, hashType, reusedValues)
	hashWriter.InfallibleWrite(previousOutputsHash.ByteSlice())

	sequencesHash := getSequencesHash(tx, hashType, reusedValues)
	hashWriter.InfallibleWrite(sequencesHash.ByteSlice())

	sigOpCountsHash := getSigOpCountsHash(tx, hashType, reusedValues)
	hashWriter.InfallibleWrite(sigOpCountsHash.ByteSlice())

	infallibleWrite(writeOutpoint(hashWriter, &txIn.PreviousOutpoint))

	scriptPublicKey := txIn.UTXOEntry.ScriptPublicKey()
	infallibleWrite(writeUint16(hashWriter, scriptPublicKey.Version))
	infallibleWrite(writeVarBytes(hashWriter, scriptPublicKey.Script))

	infallibleWrite(writeUint64(hashWriter, txIn.UTXOEntry.Amount()))
	infallibleWrite(writeUint64(hashWriter, txIn.Sequence))
	hashWriter.InfallibleWrite([]byte{txIn.SigOpCount})

	outputsHash := getOutputsHash(tx, inputIndex, hashType, reusedValues)
	hashWriter.InfallibleWrite(outputsHash.ByteSlice())

	infallibleWrite(writeUint64(hashWriter, tx.LockTime))
	hashWriter.InfallibleWrite(tx.SubnetworkID[:])
	infallibleWrite(writeUint64(hashWriter, tx.Gas))

	payloadHash := getPayloadHash(tx, reusedValues)
	hashWriter.InfallibleWrite(payloadHash.ByteSlice())

	hashWriter.InfallibleWrite([]byte{uint8(hashType)})

	return hashWriter.Finalize()
}

func getPreviousOutputsHash(tx *externalapi.DomainTransaction, hashType SigHashType, reusedValues *SighashReusedValues) *externalapi.DomainHash {
	if hashType.isSigHashAnyOneCanPay() {
		return externalapi.NewZeroHash()
	}

	reusedValues.previousOutputsOnce.Do(func() {
		hashWriter := hashes.NewTransactionSigningHashWriter()
		for _, txIn := range tx.Inputs {
			infallibleWrite(writeOutpoint(hashWriter, &txIn.PreviousOutpoint))
		}
		reusedValues.previousOutputsHash = hashWriter.Finalize()
	})

	return reusedValues.previousOutputsHash
}

func getSequencesHash(tx *externalapi.DomainTransaction, hashType SigHashType, reusedValues *SighashReusedValues) *externalapi.DomainHash {
	if hashType.isSigHashSingle() || hashType.isSigHashAnyOneCanPay() || hashType.isSigHashNone() {
		return externalapi.NewZeroHash()
	}

	reusedValues.sequencesOnce.Do(func() {
		hashWriter := hashes.NewTransactionSigningHashWriter()
		for _, txIn := range tx.Inputs {
			infallibleWrite(writeUint64(hashWriter, txIn.Sequence))
		}
		reusedValues.sequencesHash = hashWriter.Finalize()
	})

	return reusedValues.sequencesHash
}

func getSigOpCountsHash(tx *externalapi.DomainTransaction, hashType SigHashType, reusedValues *SighashReusedValues) *externalapi.DomainHash {
	if hashType.isSigHashAnyOneCanPay() {
		return externalapi.NewZeroHash()
	}

	reusedValues.sigOpCountsOnce.Do(func() {
		hashWriter := hashes.NewTransactionSigningHashWriter()
		for _, txIn := range tx.Inputs {
			hashWriter.InfallibleWrite([]byte{txIn.SigOpCount})
		}
		reusedValues.sigOpCountsHash = hashWriter.Finalize()
	})

	return reusedValues.sigOpCountsHash
}

func getOutputsHash(tx *externalapi.DomainTransaction, inputIndex int, hashType SigHashType, reusedValues *SighashReusedValues) *externalapi.DomainHash {
	// SigHashNone: return zero-hash
	if hashType.isSigHashNone() {
		return externalapi.NewZeroHash()
	}

	// SigHashSingle: If the relevant output exists - return its hash, otherwise return zero-hash
	if hashType.isSigHashSingle() {
		if inputIndex >= len(tx.Outputs) {
			return externalapi.NewZeroHash()
		}
		hashWriter := hashes.NewTransactionSigningHashWriter()
		infallibleWrite(writeTransactionOutput(hashWriter, tx.Outputs[inputIndex]))
		return hashWriter.Finalize()
	}

	// SigHashAll: Return hash of all outputs. Re-use hash if available.
	reusedValues.outputsOnce.Do(func() {
		hashWriter := hashes.NewTransactionSigningHashWriter()
		for _, txOut := range tx.Outputs {
			infallibleWrite(writeTransactionOutput(hashWriter, txOut))
		}
		reusedValues.outputsHash = hashWriter.Finalize()
	})

	return reusedValues.outputsHash
}

func getPayloadHash(tx *externalapi.DomainTransaction, reusedValues *SighashReusedValues) *externalapi.DomainHash {
	if tx.SubnetworkID == externalapi.SubnetworkIDNative && len(tx.Payload) == 0 {
		return externalapi.NewZeroHash()
	}

	reusedValues.payloadOnce.Do(func() {
		hashWriter := hashes.NewPayloadHashWriter()
		infallibleWrite(writeVarBytes(hashWriter, tx.Payload))
		reusedValues.payloadHash = hashWriter.Finalize()
	})

	return reusedValues.payloadHash
}

func infallibleWrite(err error) {
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
}
