package consensushashing

import (
	"encoding/binary"
	"io"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// txEncoding is a bitmask defining which transaction fields we
// want to encode and which to ignore.
type txEncoding uint8

const (
	txEncodingFull txEncoding = 0

	txEncodingExcludeSignatureScript = 1 << iota
)

// TransactionHash returns the transaction hash.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	// Encode the header and hash everything prior to the number of
	// transactions.
	writer := hashes.NewTransactionHashWriter()
	err := serializeTransaction(writer, tx, txEncodingFull)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}

	return writer.Finalize()
}

// TransactionID generates the Hash for the transaction without the signature script and mass fields.
// The result is cached in tx.ID.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	if tx.ID != nil {
		return tx.ID
	}

	// Encode the transaction, replace signature script with zeroes, cut off
	// payload and calculate the hash on the result.
	writer := hashes.NewTransactionIDWriter()
	err := serializeTransaction(writer, tx, txEncodingExcludeSignatureScript)
	if err != nil {
		// this writer never return errors (no allocations or possible failures) so errors can only come from validity checks,
		// and we assume we never construct malformed transactions.
		panic(errors.Wrap(err, "TransactionID() failed. this should never fail for structurally-valid transactions"))
	}
	tx.ID = (*externalapi.DomainTransactionID)(writer.Finalize())
	return tx.ID
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction, encodingFlags txEncoding) error {
	err := writeUint16(w, tx.Version)
	if err != nil {
		return err
	}

	count := uint64(len(tx.Inputs))
	err = writeUint64(w, count)
	if err != nil {
		return err
	}

	for _, ti := range tx.Inputs {
		err = writeTransactionInput(w, ti, encodingFlags)
		if err != nil {
			return err
		}
	}

	count = uint64(len(tx.Outputs))
	err = writeUint64(w, count)
	if err != nil {
		return err
	}

	for _, output := range tx.Outputs {
		err = writeTransactionOutput(w, output)
		if err != nil {
			return err
		}
	}

	err = writeUint64(w, tx.LockTime)
	if err != nil {
		return err
	}

	_, err = w.Write(tx.SubnetworkID[:])
	if err != nil {
		return err
	}

	err = writeUint64(w, tx.Gas)
	if err != nil {
		return err
	}

	return writeVarBytes(w, tx.Payload)
}

// writeTransactionInput encodes ti to the kaspa protocol encoding for a transaction
// input to w.
func writeTransactionInput(w io.Writer, ti *externalapi.DomainTransactionInput, encodingFlags txEncoding) error {
	err := writeOutpoint(w, &ti.PreviousOutpoint)
	if err != nil {
		return err
	}

	if encodingFlags&txEncodingExcludeSignatureScript != txEncodingExcludeSignatureScript {
		err = writeVarBytes(w, ti.SignatureScript)
		if err != nil {
			return err
		}

		_, err = w.Write([]byte{ti.SigOpCount})
		if err != nil {
			return err
		}
	} else {
		err = writeVarBytes(w, []byte{})
		if err != nil {
			return err
		}
	}

	return writeUint64(w, ti.Sequence)
}

func writeOutpoint(w io.Writer, outpoint *externalapi.DomainOutpoint) error {
	_, err := w.Write(outpoint.TransactionID.ByteSlice())
	if err != nil {
		return err
	}

	return writeUint32(w, outpoint.Index)
}

func writeTransactionOutput(w io.Writer, output *externalapi.DomainTransactionOutput) error {
	err := writeUint64(w, output.Value)
	if err != nil {
		return err
	}

	err = writeUint16(w, output.ScriptPublicKey.Version)
	if err != nil {
		return err
	}

	return writeVarBytes(w, output.ScriptPublicKey.Script)
}

func writeVarBytes(w io.Writer, data []byte) error {
	err := writeUint64(w, uint64(len(data)))
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

func writeUint16(w io.Writer, value uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}

func writeUint32(w io.Writer, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	_, err := w.Write(buf[:])
	return err
}
