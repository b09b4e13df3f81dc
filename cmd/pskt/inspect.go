package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
)

func inspect(conf *inspectConfig, out io.Writer) error {
	document, err := conf.readDocument()
	if err != nil {
		return err
	}

	global := document.Global
	fmt.Fprintf(out, "Version: %s, transaction version: %d\n", global.Version, global.TxVersion)
	if global.FallbackLockTime != nil {
		fmt.Fprintf(out, "Fallback lock time: %d\n", *global.FallbackLockTime)
	}
	fmt.Fprintf(out, "Inputs modifiable: %t, outputs modifiable: %t\n", global.InputsModifiable,
		global.OutputsModifiable)
	if global.ID != nil {
		fmt.Fprintf(out, "Finalized, transaction ID: %s\n", global.ID)
	} else {
		fmt.Fprintln(out, "Not finalized")
	}

	for i, input := range document.Inputs {
		fmt.Fprintf(out, "Input %d: %s, sighash type %s\n", i, input.PreviousOutpoint, input.SighashType)
		if input.UTXOEntry != nil {
			fmt.Fprintf(out, "\tspends %s, script %x\n", formatSompi(input.UTXOEntry.Amount()),
				input.UTXOEntry.ScriptPublicKey().Script)
		}
		if input.Sequence != nil {
			fmt.Fprintf(out, "\tsequence %d\n", *input.Sequence)
		}
		if input.MinTime != nil {
			fmt.Fprintf(out, "\tminimum lock time %d\n", *input.MinTime)
		}
		if len(input.RedeemScript) > 0 {
			fmt.Fprintf(out, "\tredeem script %x\n", input.RedeemScript)
		}
		for _, publicKey := range sortedPublicKeys(input.PartialSigs) {
			fmt.Fprintf(out, "\tsigned by %s (%s)", publicKey, input.PartialSigs[publicKey].Type)
			if keySource := input.Bip32Derivations[publicKey]; keySource != nil {
				fmt.Fprintf(out, " from %s", keySource)
			}
			fmt.Fprintln(out)
		}
		if len(input.FinalScriptSig) > 0 {
			fmt.Fprintf(out, "\tfinal signature script %x\n", input.FinalScriptSig)
		}
	}

	for i, output := range document.Outputs {
		fmt.Fprintf(out, "Output %d: %s", i, formatSompi(output.Amount))
		if output.ScriptPublicKey != nil {
			fmt.Fprintf(out, " to script %x", output.ScriptPublicKey.Script)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func formatSompi(amount uint64) string {
	return fmt.Sprintf("%d.%08d KAS", amount/constants.SompiPerKaspa, amount%constants.SompiPerKaspa)
}

func sortedPublicKeys(partialSigs map[pskt.PublicKey]pskt.Signature) []pskt.PublicKey {
	publicKeys := make([]pskt.PublicKey, 0, len(partialSigs))
	for publicKey := range partialSigs {
		publicKeys = append(publicKeys, publicKey)
	}
	sort.Slice(publicKeys, func(i, j int) bool {
		return publicKeys[i].String() < publicKeys[j].String()
	})
	return publicKeys
}
