package serialization

import (
	"encoding/hex"
	"strings"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/pkg/errors"
)

// EncodePSKTToHex returns the hex encoding of the serialized document
func EncodePSKTToHex(document *pskt.Inner) (string, error) {
	serialized, err := SerializePSKT(document)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(serialized), nil
}

// DecodePSKTFromHex decodes a document encoded by EncodePSKTToHex.
// Surrounding whitespace is ignored.
func DecodePSKTFromHex(encoded string) (*pskt.Inner, error) {
	serialized, err := decodeHex(encoded)
	if err != nil {
		return nil, err
	}
	return DeserializePSKT(serialized)
}

// EncodeTransactionToHex returns the hex encoding of the serialized
// transaction
func EncodeTransactionToHex(tx *externalapi.DomainTransaction) (string, error) {
	serialized, err := SerializeTransaction(tx)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(serialized), nil
}

// DecodeTransactionFromHex decodes a transaction encoded by
// EncodeTransactionToHex. Surrounding whitespace is ignored.
func DecodeTransactionFromHex(encoded string) (*externalapi.DomainTransaction, error) {
	serialized, err := decodeHex(encoded)
	if err != nil {
		return nil, err
	}
	return DeserializeTransaction(serialized)
}

func decodeHex(encoded string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "invalid hex: %s", err)
	}
	return decoded, nil
}
