package txmass

import (
	"bytes"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testTransaction() *externalapi.DomainTransaction {
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: bytes.Repeat([]byte{0x51}, 34), Version: 0}
	return &externalapi.DomainTransaction{
		Inputs: []*externalapi.DomainTransactionInput{{
			SignatureScript: bytes.Repeat([]byte{0x01}, 66),
			Sequence:        0,
			SigOpCount:      1,
			UTXOEntry:       utxo.NewUTXOEntry(100_000_000, scriptPublicKey, false, 0),
		}},
		Outputs: []*externalapi.DomainTransactionOutput{{
			Value:           90_000_000,
			ScriptPublicKey: scriptPublicKey,
		}},
		SubnetworkID: externalapi.SubnetworkIDNative,
	}
}

func TestCalculateTransactionMass(t *testing.T) {
	calculator := NewDefaultCalculator()
	tx := testTransaction()

	// 264 bytes, 36 script public key bytes and a single sig op.
	require.Equal(t, uint64(264+36*10+1000), calculator.CalculateTransactionMass(tx))

	storageMass, err := calculator.CalculateTransactionStorageMass(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(11111-10000), storageMass)

	overallMass, err := calculator.CalculateTransactionOverallMass(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(1624), overallMass)
}

func TestCoinbaseMass(t *testing.T) {
	calculator := NewDefaultCalculator()
	tx := testTransaction()
	tx.SubnetworkID = externalapi.SubnetworkIDCoinbase

	require.Zero(t, calculator.CalculateTransactionMass(tx))
	storageMass, err := calculator.CalculateTransactionStorageMass(tx)
	require.NoError(t, err)
	require.Zero(t, storageMass)
}

func TestStorageMassMissingEntry(t *testing.T) {
	calculator := NewDefaultCalculator()
	tx := testTransaction()
	tx.Inputs[0].UTXOEntry = nil

	_, err := calculator.CalculateTransactionStorageMass(tx)
	require.True(t, errors.Is(err, ErrMissingUTXOEntry), "unexpected error: %v", err)
}

func TestStorageMassManyOutputs(t *testing.T) {
	calculator := NewDefaultCalculator()
	tx := testTransaction()
	tx.Inputs = append(tx.Inputs, tx.Inputs[0].Clone(), tx.Inputs[0].Clone())
	for i := 0; i < 2; i++ {
		tx.Outputs = append(tx.Outputs, tx.Outputs[0].Clone())
	}

	// Three equal inputs and three equal outputs: 3*11111 - 3*10000.
	storageMass, err := calculator.CalculateTransactionStorageMass(tx)
	require.NoError(t, err)
	require.Equal(t, uint64(3*11111-3*10000), storageMass)
}
