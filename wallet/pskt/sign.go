package pskt

import (
	"bytes"
	"context"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// SignInputOk is the signature a SignFunc produced for one input, together
// with the key that made it and where that key comes from.
type SignInputOk struct {
	Signature Signature
	PubKey    PublicKey
	KeySource *KeySource
}

// SignFunc signs the unsigned transaction of a document. tx carries the UTXO
// entries known to the document along with the lock time of the extracted
// transaction. sighashTypes holds, in input order, the sighash type every
// input asks for. A SignFunc returns exactly one result per input, in input
// order.
type SignFunc func(ctx context.Context, tx *externalapi.DomainTransaction,
	sighashTypes []consensushashing.SigHashType) ([]SignInputOk, error)

// PassSignature calls sign and records every returned signature and key
// source on its input. Errors returned by sign are returned unchanged. The
// document is not modified unless sign succeeds with one result per input.
func (s *Signer) PassSignature(ctx context.Context, sign SignFunc) error {
	document, err := s.inner()
	if err != nil {
		return err
	}

	results, err := sign(ctx, document.signableTransaction(), document.sighashTypes())
	if err != nil {
		return err
	}
	if len(results) != len(document.Inputs) {
		return errors.Wrapf(ErrSignatureCountMismatch, "expected %d signatures, got %d",
			len(document.Inputs), len(results))
	}

	for i, result := range results {
		input := document.Inputs[i]
		if input.PartialSigs == nil {
			input.PartialSigs = make(map[PublicKey]Signature)
		}
		if input.Bip32Derivations == nil {
			input.Bip32Derivations = make(map[PublicKey]*KeySource)
		}
		input.Bip32Derivations[result.PubKey] = result.KeySource.Clone()
		input.PartialSigs[result.PubKey] = result.Signature
	}
	log.Debugf("Added %d partial signatures", len(results))
	return nil
}

// SignWithPrivateKey returns a SignFunc that signs every input with
// privateKey, producing Schnorr signatures unless ecdsa is set. Inputs that
// pay to a public key must pay to this key. Inputs that pay to a script hash
// are signed as is, since only the finalizer knows their redeem script.
func SignWithPrivateKey(privateKey *secp256k1.ECDSAPrivateKey, keySource *KeySource, ecdsa bool) (SignFunc, error) {
	ecdsaPublicKey, err := privateKey.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	serializedPublicKey, err := ecdsaPublicKey.Serialize()
	if err != nil {
		return nil, err
	}
	publicKey, err := NewPublicKey(serializedPublicKey[:])
	if err != nil {
		return nil, err
	}

	var schnorrKeyPair *secp256k1.SchnorrKeyPair
	if !ecdsa {
		schnorrKeyPair, err = privateKey.ToSchnorr()
		if err != nil {
			return nil, err
		}
	}

	return func(ctx context.Context, tx *externalapi.DomainTransaction,
		sighashTypes []consensushashing.SigHashType) ([]SignInputOk, error) {

		sighashReusedValues := &consensushashing.SighashReusedValues{}
		results := make([]SignInputOk, len(tx.Inputs))
		for i, input := range tx.Inputs {
			err := ctx.Err()
			if err != nil {
				return nil, err
			}
			if input.UTXOEntry == nil {
				return nil, errors.Errorf("input %d has no UTXO entry to sign", i)
			}
			err = checkKeyCanSpend(input.UTXOEntry.ScriptPublicKey(), publicKey, ecdsa)
			if err != nil {
				return nil, errors.Wrapf(err, "input %d", i)
			}

			var rawSignature []byte
			signatureType := SignatureTypeSchnorr
			if ecdsa {
				signatureType = SignatureTypeECDSA
				rawSignature, err = txscript.RawTxInSignatureECDSA(tx, i, sighashTypes[i], privateKey,
					sighashReusedValues)
			} else {
				rawSignature, err = txscript.RawTxInSignature(tx, i, sighashTypes[i], schnorrKeyPair,
					sighashReusedValues)
			}
			if err != nil {
				return nil, err
			}

			signature, err := NewSignature(signatureType, rawSignature)
			if err != nil {
				return nil, err
			}
			results[i] = SignInputOk{
				Signature: signature,
				PubKey:    publicKey,
				KeySource: keySource,
			}
		}
		return results, nil
	}, nil
}

func checkKeyCanSpend(scriptPublicKey *externalapi.ScriptPublicKey, publicKey PublicKey, ecdsa bool) error {
	switch txscript.GetScriptClass(scriptPublicKey.Script) {
	case txscript.ScriptHashTy:
		return nil
	case txscript.PubKeyTy, txscript.PubKeyECDSATy:
		paidKey, isECDSA, err := txscript.ExtractPubKey(scriptPublicKey)
		if err != nil {
			return err
		}
		if isECDSA != ecdsa {
			return errors.Errorf("the script expects an ECDSA signature: %t", isECDSA)
		}
		expectedKey := publicKey.XOnly()
		if isECDSA {
			expectedKey = publicKey.Bytes()
		}
		if !bytes.Equal(paidKey, expectedKey) {
			return errors.Errorf("the script pays to %x, not to %s", paidKey, publicKey)
		}
		return nil
	default:
		return errors.Errorf("cannot sign a script of class %s", txscript.GetScriptClass(scriptPublicKey.Script))
	}
}
