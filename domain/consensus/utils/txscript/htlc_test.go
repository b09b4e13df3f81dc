package txscript

import (
	"crypto/sha256"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/go-secp256k1"
)

func TestHTLC(t *testing.T) {
	receiverKey, receiverPublicKey := schnorrKeyFromSeed(t, 0x1d)
	senderKey, senderPublicKey := schnorrKeyFromSeed(t, 0x34)

	preimage := []byte("hello world")
	hash := sha256.Sum256(preimage)
	const lockTime = 1702311302000

	redeemScript, err := HTLCRedeemScript(receiverPublicKey, senderPublicKey, hash[:], lockTime)
	if err != nil {
		t.Fatalf("HTLCRedeemScript: %+v", err)
	}
	scriptPublicKey, err := PayToScriptHash(redeemScript)
	if err != nil {
		t.Fatalf("PayToScriptHash: %+v", err)
	}

	// spend builds the signature script of one of the branches. branch is
	// pushed last, right before the redeem script.
	spend := func(tx *externalapi.DomainTransaction, key *secp256k1.SchnorrKeyPair, publicKey []byte,
		branchData [][]byte, branch byte) {

		signature, err := RawTxInSignature(tx, 0, consensushashing.SigHashAll, key, nil)
		if err != nil {
			t.Fatalf("RawTxInSignature: %+v", err)
		}
		builder := NewScriptBuilder().AddData(signature).AddData(publicKey)
		for _, data := range branchData {
			builder.AddData(data)
		}
		signatureScript, err := builder.AddOp(branch).Script()
		if err != nil {
			t.Fatalf("Script: %+v", err)
		}
		tx.Inputs[0].SignatureScript, err = PayToScriptHashSignatureScript(redeemScript, signatureScript)
		if err != nil {
			t.Fatalf("PayToScriptHashSignatureScript: %+v", err)
		}
	}

	t.Run("redeem", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		spend(tx, receiverKey, receiverPublicKey, [][]byte{preimage}, OpTrue)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if err != nil {
			t.Fatalf("redeem path failed: %+v", err)
		}
	})

	t.Run("redeem with a wrong preimage", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		spend(tx, receiverKey, receiverPublicKey, [][]byte{[]byte("hello world!")}, OpTrue)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if !IsErrorCode(err, ErrEqualVerify) {
			t.Fatalf("want ErrEqualVerify, got %v", err)
		}
	})

	t.Run("redeem by the sender", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		spend(tx, senderKey, senderPublicKey, [][]byte{preimage}, OpTrue)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if !IsErrorCode(err, ErrEqualVerify) {
			t.Fatalf("want ErrEqualVerify, got %v", err)
		}
	})

	t.Run("refund", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		tx.LockTime = lockTime
		tx.Inputs[0].Sequence = 0
		spend(tx, senderKey, senderPublicKey, nil, OpFalse)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if err != nil {
			t.Fatalf("refund path failed: %+v", err)
		}
	})

	t.Run("refund before the lock time", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		tx.LockTime = lockTime - 1
		tx.Inputs[0].Sequence = 0
		spend(tx, senderKey, senderPublicKey, nil, OpFalse)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if !IsErrorCode(err, ErrUnsatisfiedLockTime) {
			t.Fatalf("want ErrUnsatisfiedLockTime, got %v", err)
		}
	})

	t.Run("refund of a finalized input", func(t *testing.T) {
		tx := newSpendingTx(scriptPublicKey, 1)
		tx.LockTime = lockTime
		spend(tx, senderKey, senderPublicKey, nil, OpFalse)
		err := executeInput(tx, 0, ScriptNoFlags, nil)
		if !IsErrorCode(err, ErrUnsatisfiedLockTime) {
			t.Fatalf("want ErrUnsatisfiedLockTime, got %v", err)
		}
	})
}
