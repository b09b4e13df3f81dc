package txscript

// HTLCRedeemScript returns a hash time locked contract redeem script.
//
// The receiver may spend the output at any time by revealing the SHA256
// preimage of hash and signing with the receiver key. Once the transaction
// lock time reaches lockTime, the sender may reclaim it by signing with the
// sender key. Both keys are 32-byte x-only Schnorr public keys.
//
// The redeem path signature script is:
//
//	<sig> <receiver pubkey> <preimage> OpTrue <redeem script>
//
// and the refund path signature script is:
//
//	<sig> <sender pubkey> OpFalse <redeem script>
func HTLCRedeemScript(receiverPubKey, senderPubKey, hash []byte, lockTime uint64) ([]byte, error) {
	return NewScriptBuilder().
		// redeem branch
		AddOp(OpIf).
		AddOp(OpSHA256).
		AddData(hash).
		AddOp(OpEqualVerify).
		AddOp(OpDup).
		AddData(receiverPubKey).
		AddOp(OpEqualVerify).
		AddOp(OpCheckSig).
		// refund branch
		AddOp(OpElse).
		AddLockTimeNumber(lockTime).
		AddOp(OpCheckLockTimeVerify).
		AddOp(OpDup).
		AddData(senderPubKey).
		AddOp(OpEqualVerify).
		AddOp(OpCheckSig).
		AddOp(OpEndIf).
		Script()
}
