package serialization

import (
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// Fields of ScriptPublicKey
const (
	scriptPublicKeyVersion = 1
	scriptPublicKeyScript  = 2
)

// Fields of Outpoint
const (
	outpointTransactionID = 1
	outpointIndex         = 2
)

// Fields of UTXOEntry
const (
	utxoEntryAmount          = 1
	utxoEntryScriptPublicKey = 2
	utxoEntryBlockDAAScore   = 3
	utxoEntryIsCoinbase      = 4
)

// Fields of TransactionInput
const (
	transactionInputPreviousOutpoint = 1
	transactionInputSignatureScript  = 2
	transactionInputSequence         = 3
	transactionInputSigOpCount       = 4
	transactionInputUTXOEntry        = 5
)

// Fields of TransactionOutput
const (
	transactionOutputValue           = 1
	transactionOutputScriptPublicKey = 2
)

// Fields of Transaction
const (
	transactionVersion      = 1
	transactionInput        = 2
	transactionOutput       = 3
	transactionLockTime     = 4
	transactionSubnetworkID = 5
	transactionGas          = 6
	transactionPayload      = 7
	transactionMass         = 8
)

// SerializeTransaction encodes tx, including the UTXO entries its inputs
// carry.
func SerializeTransaction(tx *externalapi.DomainTransaction) ([]byte, error) {
	if tx == nil {
		return nil, errors.New("cannot serialize a nil transaction")
	}

	var b []byte
	b = appendVarint(b, transactionVersion, uint64(tx.Version))
	for _, input := range tx.Inputs {
		serializedInput := appendBytes(nil, transactionInputPreviousOutpoint, serializeOutpoint(&input.PreviousOutpoint))
		serializedInput = appendBytes(serializedInput, transactionInputSignatureScript, input.SignatureScript)
		serializedInput = appendVarint(serializedInput, transactionInputSequence, input.Sequence)
		serializedInput = appendVarint(serializedInput, transactionInputSigOpCount, uint64(input.SigOpCount))
		if input.UTXOEntry != nil {
			serializedInput = appendBytes(serializedInput, transactionInputUTXOEntry, serializeUTXOEntry(input.UTXOEntry))
		}
		b = appendBytes(b, transactionInput, serializedInput)
	}
	for _, output := range tx.Outputs {
		serializedOutput := appendVarint(nil, transactionOutputValue, output.Value)
		serializedOutput = appendBytes(serializedOutput, transactionOutputScriptPublicKey,
			serializeScriptPublicKey(output.ScriptPublicKey))
		b = appendBytes(b, transactionOutput, serializedOutput)
	}
	b = appendVarint(b, transactionLockTime, tx.LockTime)
	b = appendBytes(b, transactionSubnetworkID, tx.SubnetworkID[:])
	b = appendVarint(b, transactionGas, tx.Gas)
	b = appendBytes(b, transactionPayload, tx.Payload)
	b = appendVarint(b, transactionMass, tx.Mass)
	return b, nil
}

// DeserializeTransaction decodes a transaction encoded by SerializeTransaction
func DeserializeTransaction(serialized []byte) (*externalapi.DomainTransaction, error) {
	fields, err := parseFields(serialized)
	if err != nil {
		return nil, err
	}

	tx := &externalapi.DomainTransaction{
		Inputs:  []*externalapi.DomainTransactionInput{},
		Outputs: []*externalapi.DomainTransactionOutput{},
		Payload: []byte{},
	}
	for _, f := range fields {
		switch f.number {
		case transactionVersion:
			tx.Version, err = f.uint16()
		case transactionInput:
			var input *externalapi.DomainTransactionInput
			input, err = deserializeTransactionInput(&f)
			if err == nil {
				tx.Inputs = append(tx.Inputs, input)
			}
		case transactionOutput:
			var output *externalapi.DomainTransactionOutput
			output, err = deserializeTransactionOutput(&f)
			if err == nil {
				tx.Outputs = append(tx.Outputs, output)
			}
		case transactionLockTime:
			tx.LockTime, err = f.uint64()
		case transactionSubnetworkID:
			var subnetworkID []byte
			subnetworkID, err = f.copyBytes()
			if err == nil && len(subnetworkID) != externalapi.DomainSubnetworkIDSize {
				err = errors.Wrapf(ErrMalformed, "subnetwork id of %d bytes", len(subnetworkID))
			}
			copy(tx.SubnetworkID[:], subnetworkID)
		case transactionGas:
			tx.Gas, err = f.uint64()
		case transactionPayload:
			tx.Payload, err = f.copyBytes()
		case transactionMass:
			tx.Mass, err = f.uint64()
		}
		if err != nil {
			return nil, errors.Wrap(err, "transaction")
		}
	}
	return tx, nil
}

func deserializeTransactionInput(f *field) (*externalapi.DomainTransactionInput, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	input := &externalapi.DomainTransactionInput{SignatureScript: []byte{}}
	for _, f := range fields {
		switch f.number {
		case transactionInputPreviousOutpoint:
			var outpoint *externalapi.DomainOutpoint
			outpoint, err = deserializeOutpoint(&f)
			if err == nil {
				input.PreviousOutpoint = *outpoint
			}
		case transactionInputSignatureScript:
			input.SignatureScript, err = f.copyBytes()
		case transactionInputSequence:
			input.Sequence, err = f.uint64()
		case transactionInputSigOpCount:
			input.SigOpCount, err = f.uint8()
		case transactionInputUTXOEntry:
			input.UTXOEntry, err = deserializeUTXOEntry(&f)
		}
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
	}
	return input, nil
}

func deserializeTransactionOutput(f *field) (*externalapi.DomainTransactionOutput, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	output := &externalapi.DomainTransactionOutput{}
	for _, f := range fields {
		switch f.number {
		case transactionOutputValue:
			output.Value, err = f.uint64()
		case transactionOutputScriptPublicKey:
			output.ScriptPublicKey, err = deserializeScriptPublicKey(&f)
		}
		if err != nil {
			return nil, errors.Wrap(err, "output")
		}
	}
	if output.ScriptPublicKey == nil {
		return nil, errors.Wrap(ErrMalformed, "output without a script public key")
	}
	return output, nil
}

func serializeScriptPublicKey(scriptPublicKey *externalapi.ScriptPublicKey) []byte {
	b := appendVarint(nil, scriptPublicKeyVersion, uint64(scriptPublicKey.Version))
	return appendBytes(b, scriptPublicKeyScript, scriptPublicKey.Script)
}

func deserializeScriptPublicKey(f *field) (*externalapi.ScriptPublicKey, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{}}
	for _, f := range fields {
		switch f.number {
		case scriptPublicKeyVersion:
			scriptPublicKey.Version, err = f.uint16()
		case scriptPublicKeyScript:
			scriptPublicKey.Script, err = f.copyBytes()
		}
		if err != nil {
			return nil, errors.Wrap(err, "script public key")
		}
	}
	return scriptPublicKey, nil
}

func serializeOutpoint(outpoint *externalapi.DomainOutpoint) []byte {
	b := appendBytes(nil, outpointTransactionID, outpoint.TransactionID.ByteSlice())
	return appendVarint(b, outpointIndex, uint64(outpoint.Index))
}

func deserializeOutpoint(f *field) (*externalapi.DomainOutpoint, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	outpoint := &externalapi.DomainOutpoint{}
	for _, f := range fields {
		switch f.number {
		case outpointTransactionID:
			var transactionID *externalapi.DomainTransactionID
			transactionID, err = deserializeTransactionID(&f)
			if err == nil {
				outpoint.TransactionID = *transactionID
			}
		case outpointIndex:
			outpoint.Index, err = f.uint32()
		}
		if err != nil {
			return nil, errors.Wrap(err, "outpoint")
		}
	}
	return outpoint, nil
}

func deserializeTransactionID(f *field) (*externalapi.DomainTransactionID, error) {
	transactionIDBytes, err := f.copyBytes()
	if err != nil {
		return nil, err
	}
	transactionID, err := externalapi.NewDomainTransactionIDFromByteSlice(transactionIDBytes)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "transaction id: %s", err)
	}
	return transactionID, nil
}

func serializeUTXOEntry(entry externalapi.UTXOEntry) []byte {
	b := appendVarint(nil, utxoEntryAmount, entry.Amount())
	b = appendBytes(b, utxoEntryScriptPublicKey, serializeScriptPublicKey(entry.ScriptPublicKey()))
	b = appendVarint(b, utxoEntryBlockDAAScore, entry.BlockDAAScore())
	return appendBool(b, utxoEntryIsCoinbase, entry.IsCoinbase())
}

func deserializeUTXOEntry(f *field) (externalapi.UTXOEntry, error) {
	fields, err := f.message()
	if err != nil {
		return nil, err
	}

	var amount, blockDAAScore uint64
	var isCoinbase bool
	var scriptPublicKey *externalapi.ScriptPublicKey
	for _, f := range fields {
		switch f.number {
		case utxoEntryAmount:
			amount, err = f.uint64()
		case utxoEntryScriptPublicKey:
			scriptPublicKey, err = deserializeScriptPublicKey(&f)
		case utxoEntryBlockDAAScore:
			blockDAAScore, err = f.uint64()
		case utxoEntryIsCoinbase:
			isCoinbase, err = f.bool()
		}
		if err != nil {
			return nil, errors.Wrap(err, "UTXO entry")
		}
	}
	if scriptPublicKey == nil {
		return nil, errors.Wrap(ErrMalformed, "UTXO entry without a script public key")
	}
	return utxo.NewUTXOEntry(amount, scriptPublicKey, isCoinbase, blockDAAScore), nil
}
