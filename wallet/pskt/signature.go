package pskt

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

// SignatureSize is the size of both Schnorr and ECDSA signatures
const SignatureSize = 64

// SignatureType tells which scheme produced a Signature
type SignatureType uint8

// The supported signature schemes.
const (
	SignatureTypeSchnorr SignatureType = iota
	SignatureTypeECDSA
)

func (t SignatureType) String() string {
	switch t {
	case SignatureTypeSchnorr:
		return "schnorr"
	case SignatureTypeECDSA:
		return "ecdsa"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Signature is a partial signature over an input, without the sighash type
// suffix scripts carry.
type Signature struct {
	Type  SignatureType
	Bytes [SignatureSize]byte
}

// NewSignature returns a Signature of the given type holding raw. A trailing
// sighash type byte, as produced by the txscript signing helpers, is
// stripped.
func NewSignature(signatureType SignatureType, raw []byte) (Signature, error) {
	signature := Signature{Type: signatureType}
	if signatureType != SignatureTypeSchnorr && signatureType != SignatureTypeECDSA {
		return signature, errors.Errorf("unknown signature type %d", signatureType)
	}
	if len(raw) == SignatureSize+1 {
		raw = raw[:SignatureSize]
	}
	if len(raw) != SignatureSize {
		return signature, errors.Errorf("signature must be %d bytes, got %d", SignatureSize, len(raw))
	}
	copy(signature.Bytes[:], raw)
	return signature, nil
}

func (s Signature) String() string {
	return s.Type.String() + ":" + hex.EncodeToString(s.Bytes[:])
}
