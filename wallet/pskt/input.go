package pskt

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
)

// Input holds everything the parties know about one input of the
// transaction.
type Input struct {
	// UTXOEntry is the entry of the spent output. Signing and verification
	// need it, construction does not.
	UTXOEntry        externalapi.UTXOEntry
	PreviousOutpoint externalapi.DomainOutpoint
	Sequence         *uint64
	MinTime          *uint64
	PartialSigs      map[PublicKey]Signature
	SighashType      consensushashing.SigHashType
	RedeemScript     []byte
	SigOpCount       *uint8
	Bip32Derivations map[PublicKey]*KeySource
	FinalScriptSig   []byte
	Proprietaries    map[string][]byte
}

// NewInput returns an input spending the given outpoint with the default
// sighash type. utxoEntry may be nil.
func NewInput(previousOutpoint externalapi.DomainOutpoint, utxoEntry externalapi.UTXOEntry) *Input {
	return &Input{
		UTXOEntry:        utxoEntry,
		PreviousOutpoint: previousOutpoint,
		SighashType:      consensushashing.SigHashAll,
	}
}

// Clone returns a clone of Input. UTXO entries are immutable and are shared.
func (input *Input) Clone() *Input {
	clone := &Input{
		UTXOEntry:        input.UTXOEntry,
		PreviousOutpoint: *input.PreviousOutpoint.Clone(),
		Sequence:         cloneUint64(input.Sequence),
		MinTime:          cloneUint64(input.MinTime),
		SighashType:      input.SighashType,
		RedeemScript:     cloneBytes(input.RedeemScript),
		FinalScriptSig:   cloneBytes(input.FinalScriptSig),
		Bip32Derivations: cloneDerivations(input.Bip32Derivations),
		Proprietaries:    cloneProprietaries(input.Proprietaries),
	}
	if input.SigOpCount != nil {
		sigOpCount := *input.SigOpCount
		clone.SigOpCount = &sigOpCount
	}
	if input.PartialSigs != nil {
		clone.PartialSigs = make(map[PublicKey]Signature, len(input.PartialSigs))
		for publicKey, signature := range input.PartialSigs {
			clone.PartialSigs[publicKey] = signature
		}
	}
	return clone
}

func (input *Input) combine(other *Input, index int) (*Input, error) {
	conflict := func(field string) error {
		return &CombineError{Scope: ScopeInput, Index: index, Field: field}
	}

	if !input.PreviousOutpoint.Equal(&other.PreviousOutpoint) {
		return nil, conflict("PreviousOutpoint")
	}
	result := &Input{PreviousOutpoint: *input.PreviousOutpoint.Clone()}

	switch {
	case input.UTXOEntry == nil:
		result.UTXOEntry = other.UTXOEntry
	case other.UTXOEntry == nil || input.UTXOEntry.Equal(other.UTXOEntry):
		result.UTXOEntry = input.UTXOEntry
	default:
		return nil, conflict("UTXOEntry")
	}

	// A zero sighash type is not valid, so it stands for unset.
	switch {
	case input.SighashType == 0:
		result.SighashType = other.SighashType
	case other.SighashType == 0 || input.SighashType == other.SighashType:
		result.SighashType = input.SighashType
	default:
		return nil, conflict("SighashType")
	}

	var ok bool
	if result.Sequence, ok = combineOptional(input.Sequence, other.Sequence); !ok {
		return nil, conflict("Sequence")
	}
	if result.MinTime, ok = combineOptional(input.MinTime, other.MinTime); !ok {
		return nil, conflict("MinTime")
	}
	if result.SigOpCount, ok = combineOptional(input.SigOpCount, other.SigOpCount); !ok {
		return nil, conflict("SigOpCount")
	}
	if result.RedeemScript, ok = combineBytes(input.RedeemScript, other.RedeemScript); !ok {
		return nil, conflict("RedeemScript")
	}
	if result.FinalScriptSig, ok = combineBytes(input.FinalScriptSig, other.FinalScriptSig); !ok {
		return nil, conflict("FinalScriptSig")
	}

	var conflictingPublicKey PublicKey
	result.PartialSigs, conflictingPublicKey, ok = combineMaps(input.PartialSigs, other.PartialSigs,
		func(a, b Signature) bool { return a == b },
		func(signature Signature) Signature { return signature })
	if !ok {
		return nil, conflict("PartialSigs[" + conflictingPublicKey.String() + "]")
	}

	result.Bip32Derivations, conflictingPublicKey, ok = combineDerivations(input.Bip32Derivations,
		other.Bip32Derivations)
	if !ok {
		return nil, conflict("Bip32Derivations[" + conflictingPublicKey.String() + "]")
	}

	var conflictingKey string
	result.Proprietaries, conflictingKey, ok = combineProprietaries(input.Proprietaries, other.Proprietaries)
	if !ok {
		return nil, conflict("Proprietaries[" + conflictingKey + "]")
	}

	return result, nil
}
