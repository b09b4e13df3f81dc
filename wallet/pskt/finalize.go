package pskt

import (
	"bytes"
	"context"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
	"github.com/pkg/errors"
)

// FinalizeFunc returns, in input order, the final signature script of every
// input of document.
type FinalizeFunc func(ctx context.Context, document *Inner) ([][]byte, error)

// Finalize calls finalize and stores the returned signature scripts on their
// inputs. It sets unset sequences to the maximum sequence and sets the
// transaction id of the document. Nothing is modified when finalize fails,
// returns a wrong number of scripts or returns an empty script.
func (f *Finalizer) Finalize(ctx context.Context, finalize FinalizeFunc) error {
	document, err := f.inner()
	if err != nil {
		return err
	}

	signatureScripts, err := finalize(ctx, document)
	if err != nil {
		return errors.WithStack(&FinalizeCallbackError{Err: err})
	}
	if len(signatureScripts) != len(document.Inputs) {
		return errors.WithStack(&FinalizeSigsCountError{
			Expected: len(document.Inputs),
			Actual:   len(signatureScripts),
		})
	}
	for i, signatureScript := range signatureScripts {
		if len(signatureScript) == 0 {
			return errors.WithStack(&EmptySignatureError{Index: i})
		}
	}

	for i, input := range document.Inputs {
		if input.Sequence == nil {
			sequence := constants.MaxTxInSequenceNum
			input.Sequence = &sequence
		}
		input.FinalScriptSig = cloneBytes(signatureScripts[i])
	}
	document.Global.ID = document.calculateID()
	log.Debugf("Finalized transaction %s", document.Global.ID)
	return nil
}

// FinalizeStandard is a FinalizeFunc for inputs spending standard scripts.
// Pay-to-pubkey inputs take the partial signature of the paid key.
// Pay-to-script-hash inputs must carry a multisig redeem script, and take
// the partial signatures of its keys in the order the keys appear in it,
// until the required number of signatures is reached.
func FinalizeStandard(_ context.Context, document *Inner) ([][]byte, error) {
	signatureScripts := make([][]byte, len(document.Inputs))
	for i, input := range document.Inputs {
		signatureScript, err := standardSignatureScript(input)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		signatureScripts[i] = signatureScript
	}
	return signatureScripts, nil
}

func standardSignatureScript(input *Input) ([]byte, error) {
	if input.UTXOEntry == nil {
		return nil, errors.New("missing UTXO entry")
	}
	scriptPublicKey := input.UTXOEntry.ScriptPublicKey()

	switch txscript.GetScriptClass(scriptPublicKey.Script) {
	case txscript.PubKeyTy, txscript.PubKeyECDSATy:
		paidKey, isECDSA, err := txscript.ExtractPubKey(scriptPublicKey)
		if err != nil {
			return nil, err
		}
		signature, found := input.findPartialSig(paidKey, isECDSA)
		if !found {
			return nil, errors.Errorf("no partial signature for key %x", paidKey)
		}
		return txscript.NewScriptBuilder().AddData(input.scriptSignature(signature)).Script()

	case txscript.ScriptHashTy:
		if len(input.RedeemScript) == 0 {
			return nil, errors.New("missing redeem script for a pay-to-script-hash input")
		}
		expectedScriptPublicKey, err := txscript.PayToScriptHash(input.RedeemScript)
		if err != nil {
			return nil, err
		}
		if !expectedScriptPublicKey.Equal(scriptPublicKey) {
			return nil, errors.New("the redeem script does not match the script public key")
		}
		pubKeys, requiredSigs, isECDSA, err := txscript.ExtractMultiSigPubKeys(input.RedeemScript)
		if err != nil {
			return nil, err
		}

		builder := txscript.NewScriptBuilder()
		signatureCount := 0
		for _, pubKey := range pubKeys {
			if signatureCount == requiredSigs {
				break
			}
			signature, found := input.findPartialSig(pubKey, isECDSA)
			if !found {
				continue
			}
			builder.AddData(input.scriptSignature(signature))
			signatureCount++
		}
		if signatureCount < requiredSigs {
			return nil, errors.Errorf("missing %d signatures", requiredSigs-signatureCount)
		}

		signatures, err := builder.Script()
		if err != nil {
			return nil, err
		}
		return txscript.PayToScriptHashSignatureScript(input.RedeemScript, signatures)

	default:
		return nil, errors.Errorf("cannot finalize a script of class %s",
			txscript.GetScriptClass(scriptPublicKey.Script))
	}
}

// findPartialSig returns the partial signature made by the given script key:
// an x-only key for Schnorr scripts or a compressed key for ECDSA ones.
func (input *Input) findPartialSig(scriptKey []byte, isECDSA bool) (Signature, bool) {
	for publicKey, signature := range input.PartialSigs {
		if isECDSA {
			if signature.Type == SignatureTypeECDSA && bytes.Equal(publicKey[:], scriptKey) {
				return signature, true
			}
			continue
		}
		if signature.Type == SignatureTypeSchnorr && bytes.Equal(publicKey[1:], scriptKey) {
			return signature, true
		}
	}
	return Signature{}, false
}

// scriptSignature appends the input's sighash type to signature, as
// signature scripts expect it.
func (input *Input) scriptSignature(signature Signature) []byte {
	return append(signature.Bytes[:SignatureSize:SignatureSize], byte(input.SighashType))
}
