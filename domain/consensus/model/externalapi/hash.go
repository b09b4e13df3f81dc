package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size of every hash in this module: transaction
// hashes, transaction IDs and signature hashes.
const DomainHashSize = 32

// DomainHash is an immutable 32 byte hash. Accessors return copies.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewZeroHash returns the all-zero hash.
func NewZeroHash() *DomainHash {
	return &DomainHash{}
}

// NewDomainHashFromByteArray constructs a DomainHash out of a byte array
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{hashArray: *hashBytes}
}

// NewDomainHashFromByteSlice constructs a DomainHash out of a byte slice of
// exactly DomainHashSize bytes.
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("invalid hash size. Want: %d, got: %d",
			DomainHashSize, len(hashBytes))
	}
	var hash DomainHash
	copy(hash.hashArray[:], hashBytes)
	return &hash, nil
}

// NewDomainHashFromString parses a hash from its hex form, as produced by
// String.
func NewDomainHashFromString(hashString string) (*DomainHash, error) {
	if len(hashString) != DomainHashSize*2 {
		return nil, errors.Errorf("hash string length is %d, while it should be %d",
			len(hashString), DomainHashSize*2)
	}
	hashBytes, err := hex.DecodeString(hashString)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hash string %s", hashString)
	}
	return NewDomainHashFromByteSlice(hashBytes)
}

func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a copy of the hash bytes.
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	arrayClone := hash.hashArray
	return &arrayClone
}

// ByteSlice returns a copy of the hash bytes.
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// Equal returns whether hash equals to other. Two nil hashes are equal.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return hash.hashArray == other.hashArray
}
