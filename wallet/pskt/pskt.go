// Package pskt implements partially signed Kaspa transactions: a document
// that several parties pass around to build, sign and finalize a
// transaction together.
//
// A document moves through the stages Creator, Constructor, Updater,
// Signer, Finalizer and Extractor, each represented by its own handle type.
// Moving to the next stage consumes the previous handle. Combiner merges two
// documents built independently by different parties.
package pskt

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
)

// Inner is the document shared by all stage handles
type Inner struct {
	Global  Global
	Inputs  []*Input
	Outputs []*Output
}

// NewInner returns an empty version 0 document
func NewInner() *Inner {
	return &Inner{
		Global: Global{
			Version:   Version0,
			TxVersion: constants.MaxTransactionVersion,
		},
	}
}

// Clone returns a clone of Inner
func (inner *Inner) Clone() *Inner {
	clone := &Inner{
		Global:  *inner.Global.Clone(),
		Inputs:  make([]*Input, len(inner.Inputs)),
		Outputs: make([]*Output, len(inner.Outputs)),
	}
	for i, input := range inner.Inputs {
		clone.Inputs[i] = input.Clone()
	}
	for i, output := range inner.Outputs {
		clone.Outputs[i] = output.Clone()
	}
	return clone
}

func (inner *Inner) recount() {
	inner.Global.InputCount = len(inner.Inputs)
	inner.Global.OutputCount = len(inner.Outputs)
}

// UnsignedTransaction returns the transaction described by the document
// with empty signature scripts. Unset sequences are the maximum sequence,
// unset sig op counts are zero, and inputs carry their UTXO entries when
// known.
func (inner *Inner) UnsignedTransaction() *externalapi.DomainTransaction {
	inputs := make([]*externalapi.DomainTransactionInput, len(inner.Inputs))
	for i, input := range inner.Inputs {
		sequence := constants.MaxTxInSequenceNum
		if input.Sequence != nil {
			sequence = *input.Sequence
		}
		sigOpCount := byte(0)
		if input.SigOpCount != nil {
			sigOpCount = *input.SigOpCount
		}
		inputs[i] = &externalapi.DomainTransactionInput{
			PreviousOutpoint: *input.PreviousOutpoint.Clone(),
			SignatureScript:  []byte{},
			Sequence:         sequence,
			SigOpCount:       sigOpCount,
			UTXOEntry:        input.UTXOEntry,
		}
	}

	outputs := make([]*externalapi.DomainTransactionOutput, len(inner.Outputs))
	for i, output := range inner.Outputs {
		scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{}}
		if output.ScriptPublicKey != nil {
			scriptPublicKey = output.ScriptPublicKey.Clone()
		}
		outputs[i] = &externalapi.DomainTransactionOutput{
			Value:           output.Amount,
			ScriptPublicKey: scriptPublicKey,
		}
	}

	return &externalapi.DomainTransaction{
		Version:      inner.Global.TxVersion,
		Inputs:       inputs,
		Outputs:      outputs,
		LockTime:     0,
		SubnetworkID: externalapi.SubnetworkIDNative,
		Gas:          0,
		Payload:      []byte{},
	}
}

// calculateID returns the id of the unsigned transaction. Signature scripts
// are not part of transaction ids, so the id stays stable while parties add
// signatures.
func (inner *Inner) calculateID() *externalapi.DomainTransactionID {
	return consensushashing.TransactionID(inner.UnsignedTransaction())
}

// signableTransaction is the unsigned transaction with the lock time the
// extracted transaction will carry, since signature hashes commit to it.
func (inner *Inner) signableTransaction() *externalapi.DomainTransaction {
	tx := inner.UnsignedTransaction()
	tx.LockTime = inner.determineLockTime()
	return tx
}

func (inner *Inner) determineLockTime() uint64 {
	var lockTime *uint64
	for _, input := range inner.Inputs {
		if input.MinTime != nil && (lockTime == nil || *input.MinTime > *lockTime) {
			lockTime = input.MinTime
		}
	}
	if lockTime == nil {
		lockTime = inner.Global.FallbackLockTime
	}
	if lockTime == nil {
		return 0
	}
	return *lockTime
}

func (inner *Inner) sighashTypes() []consensushashing.SigHashType {
	sighashTypes := make([]consensushashing.SigHashType, len(inner.Inputs))
	for i, input := range inner.Inputs {
		sighashTypes[i] = input.SighashType
	}
	return sighashTypes
}
