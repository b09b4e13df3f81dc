package serialization_test

import (
	"bytes"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/consensushashing"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt/serialization"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func testPublicKey(t *testing.T, fill byte) pskt.PublicKey {
	serialized := append([]byte{0x02}, bytes.Repeat([]byte{fill}, pskt.PublicKeySize-1)...)
	publicKey, err := pskt.NewPublicKey(serialized)
	require.NoError(t, err)
	return publicKey
}

func testSignature(t *testing.T, signatureType pskt.SignatureType, fill byte) pskt.Signature {
	signature, err := pskt.NewSignature(signatureType, bytes.Repeat([]byte{fill}, pskt.SignatureSize))
	require.NoError(t, err)
	return signature
}

func fullDocument(t *testing.T) *pskt.Inner {
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{txscript.OpTrue}, Version: 0}
	keySource, err := pskt.ParseKeySource("01020304/m/44'/111111'/0'/0/3")
	require.NoError(t, err)
	rootKeySource, err := pskt.ParseKeySource("0a0b0c0d/m")
	require.NoError(t, err)

	constructor := pskt.NewCreator().FallbackLockTime(1234).InputsModifiable().OutputsModifiable().Constructor()
	for i := 0; i < 2; i++ {
		outpoint := externalapi.DomainOutpoint{
			TransactionID: *externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{byte(i), 0xff}),
			Index:         uint32(i + 7),
		}
		input := pskt.NewInput(outpoint, utxo.NewUTXOEntry(uint64(i+1)*1000, scriptPublicKey, i == 1, 55))
		require.NoError(t, constructor.AddInput(input))
	}
	require.NoError(t, constructor.AddInput(pskt.NewInput(externalapi.DomainOutpoint{Index: 9}, nil)))
	require.NoError(t, constructor.AddOutput(pskt.NewOutput(2500, scriptPublicKey)))
	require.NoError(t, constructor.AddOutput(pskt.NewOutput(1, nil)))

	document := constructor.Updater().Inner()
	document.Global.XPubs = map[string]pskt.KeySource{"kpub-a": *keySource, "kpub-b": *rootKeySource}
	document.Global.ID = externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{0xee})
	document.Global.Proprietaries = map[string][]byte{"wallet": {1, 2}}

	sequence, minTime, sigOpCount := uint64(3), uint64(600), uint8(2)
	input := document.Inputs[0]
	input.Sequence = &sequence
	input.MinTime = &minTime
	input.SigOpCount = &sigOpCount
	input.SighashType = consensushashing.SigHashSingle | consensushashing.SigHashAnyOneCanPay
	input.RedeemScript = []byte{txscript.Op2, txscript.OpEqual}
	input.PartialSigs = map[pskt.PublicKey]pskt.Signature{
		testPublicKey(t, 1): testSignature(t, pskt.SignatureTypeSchnorr, 0x11),
		testPublicKey(t, 2): testSignature(t, pskt.SignatureTypeECDSA, 0x22),
	}
	input.Bip32Derivations = map[pskt.PublicKey]*pskt.KeySource{
		testPublicKey(t, 1): keySource,
		testPublicKey(t, 2): nil,
	}
	input.FinalScriptSig = []byte{txscript.Op1}
	input.Proprietaries = map[string][]byte{"note": []byte("first")}

	output := document.Outputs[0]
	output.RedeemScript = []byte{txscript.OpTrue}
	output.Bip32Derivations = map[pskt.PublicKey]*pskt.KeySource{testPublicKey(t, 3): rootKeySource}
	output.Proprietaries = map[string][]byte{"label": []byte("change")}
	return document
}

func TestPSKTRoundTrip(t *testing.T) {
	document := fullDocument(t)

	serialized, err := serialization.SerializePSKT(document)
	require.NoError(t, err)
	deserialized, err := serialization.DeserializePSKT(serialized)
	require.NoError(t, err)
	require.Equal(t, document, deserialized)

	reserialized, err := serialization.SerializePSKT(deserialized)
	require.NoError(t, err)
	require.Equal(t, serialized, reserialized)

	_, err = pskt.ResumeCombiner(deserialized)
	require.NoError(t, err)
}

func TestPSKTHexRoundTrip(t *testing.T) {
	document := pskt.NewInner()
	encoded, err := serialization.EncodePSKTToHex(document)
	require.NoError(t, err)

	decoded, err := serialization.DecodePSKTFromHex("  " + encoded + "\n")
	require.NoError(t, err)
	require.Equal(t, document, decoded)

	_, err = serialization.DecodePSKTFromHex("not hex")
	require.True(t, errors.Is(err, serialization.ErrMalformed), "got %v", err)
}

func TestPSKTSkipsUnknownFields(t *testing.T) {
	document := fullDocument(t)
	serialized, err := serialization.SerializePSKT(document)
	require.NoError(t, err)

	serialized = protowire.AppendTag(serialized, 99, protowire.VarintType)
	serialized = protowire.AppendVarint(serialized, 12345)
	serialized = protowire.AppendTag(serialized, 100, protowire.Fixed64Type)
	serialized = protowire.AppendFixed64(serialized, 1)

	deserialized, err := serialization.DeserializePSKT(serialized)
	require.NoError(t, err)
	require.Equal(t, document, deserialized)
}

func TestPSKTMalformed(t *testing.T) {
	serialized, err := serialization.SerializePSKT(fullDocument(t))
	require.NoError(t, err)

	_, err = serialization.DeserializePSKT(serialized[:len(serialized)-3])
	require.True(t, errors.Is(err, serialization.ErrMalformed), "got %v", err)

	// A global field holding a varint where a message is expected.
	bad := protowire.AppendTag(nil, 1, protowire.VarintType)
	bad = protowire.AppendVarint(bad, 1)
	_, err = serialization.DeserializePSKT(bad)
	require.True(t, errors.Is(err, serialization.ErrMalformed), "got %v", err)

	_, err = serialization.SerializePSKT(nil)
	require.Error(t, err)
}

func TestTransactionRoundTrip(t *testing.T) {
	scriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{txscript.OpTrue, txscript.OpTrue}, Version: 0}
	tx := &externalapi.DomainTransaction{
		Version: constants.MaxTransactionVersion,
		Inputs: []*externalapi.DomainTransactionInput{
			{
				PreviousOutpoint: externalapi.DomainOutpoint{
					TransactionID: *externalapi.NewDomainTransactionIDFromByteArray(&[externalapi.DomainHashSize]byte{0x01}),
					Index:         2,
				},
				SignatureScript: []byte{txscript.Op1},
				Sequence:        constants.MaxTxInSequenceNum,
				SigOpCount:      1,
				UTXOEntry:       utxo.NewUTXOEntry(5000, scriptPublicKey, false, 10),
			},
			{
				SignatureScript: []byte{},
				Sequence:        0,
			},
		},
		Outputs: []*externalapi.DomainTransactionOutput{
			{Value: 4000, ScriptPublicKey: scriptPublicKey},
		},
		LockTime:     500,
		SubnetworkID: externalapi.SubnetworkIDNative,
		Payload:      []byte{},
		Mass:         1624,
	}

	encoded, err := serialization.EncodeTransactionToHex(tx)
	require.NoError(t, err)
	decoded, err := serialization.DecodeTransactionFromHex(encoded)
	require.NoError(t, err)
	require.Equal(t, tx, decoded)
	require.True(t, consensushashing.TransactionID(tx).Equal(consensushashing.TransactionID(decoded)))
}
