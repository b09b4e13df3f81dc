package pskt

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
)

// PublicKeySize is the size of a compressed secp256k1 public key
const PublicKeySize = 33

// PublicKey is a compressed secp256k1 public key. Schnorr signatures are
// checked against its x-only form.
type PublicKey [PublicKeySize]byte

// NewPublicKey returns the PublicKey held by the given 33-byte compressed
// serialization.
func NewPublicKey(serialized []byte) (PublicKey, error) {
	var publicKey PublicKey
	if len(serialized) != PublicKeySize {
		return publicKey, errors.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(serialized))
	}
	if serialized[0] != 0x02 && serialized[0] != 0x03 {
		return publicKey, errors.Errorf("invalid compressed public key prefix %#02x", serialized[0])
	}
	copy(publicKey[:], serialized)
	return publicKey, nil
}

// XOnly returns the 32-byte x-only form of the key used by Schnorr scripts
func (pk PublicKey) XOnly() []byte {
	xOnly := make([]byte, PublicKeySize-1)
	copy(xOnly, pk[1:])
	return xOnly
}

// Bytes returns a copy of the compressed serialization
func (pk PublicKey) Bytes() []byte {
	serialized := make([]byte, PublicKeySize)
	copy(serialized, pk[:])
	return serialized
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// FingerprintSize is the size of a key fingerprint
const FingerprintSize = 4

// Fingerprint identifies a master key by the first bytes of the hash160 of
// its compressed public key.
type Fingerprint [FingerprintSize]byte

// NewFingerprint returns the fingerprint of the given compressed public key
func NewFingerprint(compressedPublicKey []byte) Fingerprint {
	var fingerprint Fingerprint
	copy(fingerprint[:], btcutil.Hash160(compressedPublicKey))
	return fingerprint
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// HardenedKeyStart is the index of the first hardened child key
const HardenedKeyStart = 0x80000000

// DerivationPath is a list of child indexes from a master key
type DerivationPath []uint32

// ParseDerivationPath parses paths in the form m/44'/111111'/0'/0/1
func ParseDerivationPath(path string) (DerivationPath, error) {
	parts := strings.Split(path, "/")
	if parts[0] != "m" {
		return nil, errors.Errorf("derivation path %q must start with m", path)
	}
	derivationPath := make(DerivationPath, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'")
		part = strings.TrimSuffix(part, "'")
		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid index %q in derivation path %q", part, path)
		}
		if index >= HardenedKeyStart {
			return nil, errors.Errorf("index %d in derivation path %q is too big", index, path)
		}
		if hardened {
			index += HardenedKeyStart
		}
		derivationPath = append(derivationPath, uint32(index))
	}
	return derivationPath, nil
}

func (path DerivationPath) String() string {
	var builder strings.Builder
	builder.WriteString("m")
	for _, index := range path {
		if index >= HardenedKeyStart {
			fmt.Fprintf(&builder, "/%d'", index-HardenedKeyStart)
		} else {
			fmt.Fprintf(&builder, "/%d", index)
		}
	}
	return builder.String()
}

// Equal returns whether path equals to other
func (path DerivationPath) Equal(other DerivationPath) bool {
	if len(path) != len(other) {
		return false
	}
	for i := range path {
		if path[i] != other[i] {
			return false
		}
	}
	return true
}

// KeySource is the fingerprint of a master key together with the path the
// signing key was derived along.
type KeySource struct {
	Fingerprint    Fingerprint
	DerivationPath DerivationPath
}

// ParseKeySource parses key sources in the form xxxxxxxx/m/44'/111111'/0'
func ParseKeySource(keySource string) (*KeySource, error) {
	separator := strings.Index(keySource, "/")
	if separator != 2*FingerprintSize {
		return nil, errors.Errorf("key source %q must start with a %d byte hex fingerprint",
			keySource, FingerprintSize)
	}
	fingerprintBytes, err := hex.DecodeString(keySource[:separator])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fingerprint in key source %q", keySource)
	}
	derivationPath, err := ParseDerivationPath(keySource[separator+1:])
	if err != nil {
		return nil, err
	}

	result := &KeySource{DerivationPath: derivationPath}
	copy(result.Fingerprint[:], fingerprintBytes)
	return result, nil
}

func (ks *KeySource) String() string {
	return ks.Fingerprint.String() + "/" + ks.DerivationPath.String()
}

// Equal returns whether ks equals to other
func (ks *KeySource) Equal(other *KeySource) bool {
	if ks == nil || other == nil {
		return ks == other
	}
	return bytes.Equal(ks.Fingerprint[:], other.Fingerprint[:]) && ks.DerivationPath.Equal(other.DerivationPath)
}

// Clone returns a clone of KeySource
func (ks *KeySource) Clone() *KeySource {
	if ks == nil {
		return nil
	}
	derivationPathClone := make(DerivationPath, len(ks.DerivationPath))
	copy(derivationPathClone, ks.DerivationPath)
	return &KeySource{
		Fingerprint:    ks.Fingerprint,
		DerivationPath: derivationPathClone,
	}
}
