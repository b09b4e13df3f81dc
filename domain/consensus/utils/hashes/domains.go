package hashes

import (
	"crypto/sha256"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	transactionHashDomain         = "TransactionHash"
	transactionIDDomain           = "TransactionID"
	transactionSigningDomain      = "TransactionSigningHash"
	transactionSigningECDSADomain = "TransactionSigningHashECDSA"
	payloadDomain                 = "PayloadHash"
)

var transactionSigningECDSADomainHash = sha256.Sum256([]byte(transactionSigningECDSADomain))

// NewTransactionHashWriter Returns a new HashWriter used for transaction hashes
func NewTransactionHashWriter() HashWriter {
	return newKeyedBlake2bWriter(transactionHashDomain)
}

// NewTransactionIDWriter Returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newKeyedBlake2bWriter(transactionIDDomain)
}

// NewTransactionSigningHashWriter Returns a new HashWriter used for signing on a transaction
func NewTransactionSigningHashWriter() HashWriter {
	return newKeyedBlake2bWriter(transactionSigningDomain)
}

// NewTransactionSigningHashECDSAWriter Returns a new ShaHashWriter used for signing on a transaction with ECDSA
func NewTransactionSigningHashECDSAWriter() ShaHashWriter {
	hashWriter := ShaHashWriter{sha256.New()}
	hashWriter.InfallibleWrite(transactionSigningECDSADomainHash[:])
	return hashWriter
}

// NewPayloadHashWriter Returns a new HashWriter used for hashing a transaction payload
func NewPayloadHashWriter() HashWriter {
	return newKeyedBlake2bWriter(payloadDomain)
}

func newKeyedBlake2bWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}
