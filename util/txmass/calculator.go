package txmass

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/pkg/errors"
)

// Mainnet mass parameters.
const (
	DefaultMassPerTxByte           = 1
	DefaultMassPerScriptPubKeyByte = 10
	DefaultMassPerSigOp            = 1000
)

// ErrMissingUTXOEntry is returned by storage mass calculation when an input
// does not carry the entry it spends.
var ErrMissingUTXOEntry = errors.New("storage mass calculation expects a fully populated transaction")

// Calculator calculates the mass of transactions
type Calculator struct {
	massPerTxByte           uint64
	massPerScriptPubKeyByte uint64
	massPerSigOp            uint64

	// Scales inverse sompi amounts to mass units
	storageMassParameter uint64
}

// NewCalculator creates a new instance of Calculator
func NewCalculator(massPerTxByte, massPerScriptPubKeyByte, massPerSigOp uint64) *Calculator {
	return &Calculator{
		massPerTxByte:           massPerTxByte,
		massPerScriptPubKeyByte: massPerScriptPubKeyByte,
		massPerSigOp:            massPerSigOp,
		storageMassParameter:    constants.SompiPerKaspa * 10_000,
	}
}

// NewDefaultCalculator returns a Calculator using the mainnet parameters
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultMassPerTxByte, DefaultMassPerScriptPubKeyByte, DefaultMassPerSigOp)
}

func isCoinbase(tx *externalapi.DomainTransaction) bool {
	return tx.SubnetworkID == externalapi.SubnetworkIDCoinbase
}

// CalculateTransactionMass calculates the compute mass of the given
// transaction: its estimated size, its script public keys and its declared
// signature operations.
func (c *Calculator) CalculateTransactionMass(tx *externalapi.DomainTransaction) uint64 {
	if isCoinbase(tx) {
		return 0
	}

	massForSize := transactionEstimatedSerializedSize(tx) * c.massPerTxByte

	scriptPublicKeySize := uint64(0)
	for _, output := range tx.Outputs {
		scriptPublicKeySize += 2 // version
		scriptPublicKeySize += uint64(len(output.ScriptPublicKey.Script))
	}

	sigOpCount := uint64(0)
	for _, input := range tx.Inputs {
		sigOpCount += uint64(input.SigOpCount)
	}

	return massForSize + scriptPublicKeySize*c.massPerScriptPubKeyByte + sigOpCount*c.massPerSigOp
}

// CalculateTransactionStorageMass calculates the storage mass of the given
// transaction, which grows with the number of small outputs it creates
// relative to the inputs it spends.
func (c *Calculator) CalculateTransactionStorageMass(tx *externalapi.DomainTransaction) (uint64, error) {
	if isCoinbase(tx) {
		return 0, nil
	}
	if len(tx.Inputs) == 0 {
		return 0, errors.New("storage mass calculation expects at least one input")
	}
	for i, input := range tx.Inputs {
		if input.UTXOEntry == nil {
			return 0, errors.Wrapf(ErrMissingUTXOEntry, "input %d", i)
		}
	}

	harmonicOuts := uint64(0)
	for _, output := range tx.Outputs {
		if output.Value == 0 {
			return 0, errors.New("storage mass calculation expects non-zero outputs")
		}
		inverse := c.storageMassParameter / output.Value
		if harmonicOuts+inverse < harmonicOuts {
			return 0, errors.New("storage mass overflow")
		}
		harmonicOuts += inverse
	}

	outsLen := uint64(len(tx.Outputs))
	insLen := uint64(len(tx.Inputs))

	if outsLen == 1 || insLen == 1 || (outsLen == 2 && insLen == 2) {
		harmonicDiff := harmonicOuts
		for _, input := range tx.Inputs {
			inverse := c.storageMassParameter / input.UTXOEntry.Amount()
			if harmonicDiff < inverse {
				return 0, nil
			}
			harmonicDiff -= inverse
		}
		return harmonicDiff, nil
	}

	// Total supply is bounded, so the sum of the spent amounts cannot
	// overflow.
	sumIns := uint64(0)
	for _, input := range tx.Inputs {
		sumIns += input.UTXOEntry.Amount()
	}
	inverseMeanIns := c.storageMassParameter / (sumIns / insLen)
	arithmeticIns := insLen * inverseMeanIns
	if arithmeticIns < inverseMeanIns || harmonicOuts < arithmeticIns {
		return 0, nil
	}
	return harmonicOuts - arithmeticIns, nil
}

// CalculateTransactionOverallMass returns the larger of the compute mass and
// the storage mass.
func (c *Calculator) CalculateTransactionOverallMass(tx *externalapi.DomainTransaction) (uint64, error) {
	storageMass, err := c.CalculateTransactionStorageMass(tx)
	if err != nil {
		return 0, err
	}
	return max(c.CalculateTransactionMass(tx), storageMass), nil
}

// transactionEstimatedSerializedSize is deterministic but not necessarily
// accurate. It is only used as the size component of the mass.
func transactionEstimatedSerializedSize(tx *externalapi.DomainTransaction) uint64 {
	size := uint64(0)
	size += 2 // version
	size += 8 // number of inputs
	for _, input := range tx.Inputs {
		size += externalapi.DomainHashSize + 4 // outpoint
		size += 8 + uint64(len(input.SignatureScript))
		size += 8 // sequence
	}

	size += 8 // number of outputs
	for _, output := range tx.Outputs {
		size += TransactionOutputEstimatedSerializedSize(output)
	}

	size += 8 // lock time
	size += externalapi.DomainSubnetworkIDSize
	size += 8                          // gas
	size += externalapi.DomainHashSize // payload hash
	size += 8 + uint64(len(tx.Payload))
	return size
}

// TransactionOutputEstimatedSerializedSize is the estimated serialized size
// of a single output
func TransactionOutputEstimatedSerializedSize(output *externalapi.DomainTransactionOutput) uint64 {
	size := uint64(0)
	size += 8 // value
	size += 2 // script public key version
	size += 8 + uint64(len(output.ScriptPublicKey.Script))
	return size
}
