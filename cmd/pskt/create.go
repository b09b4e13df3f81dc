package main

import (
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/constants"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/utxo"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/pkg/errors"
)

func create(conf *createConfig, out io.Writer) error {
	creator := pskt.NewCreator().InputsModifiable().OutputsModifiable()
	if conf.FallbackLockTime != 0 {
		creator.FallbackLockTime(conf.FallbackLockTime)
	}
	constructor := creator.Constructor()

	for _, inputString := range conf.Inputs {
		input, err := parseInput(inputString)
		if err != nil {
			return err
		}
		err = constructor.AddInput(input)
		if err != nil {
			return err
		}
	}
	for _, outputString := range conf.Outputs {
		output, err := parseOutput(outputString)
		if err != nil {
			return err
		}
		err = constructor.AddOutput(output)
		if err != nil {
			return err
		}
	}

	document := constructor.Updater().Inner()
	log.Infof("Created a document with %d inputs and %d outputs", document.Global.InputCount,
		document.Global.OutputCount)
	return writeDocument(out, document)
}

// parseInput parses <txid>:<index>:<amount>:<script public key>[:<redeem script>]
func parseInput(inputString string) (*pskt.Input, error) {
	parts := strings.Split(inputString, ":")
	if len(parts) != 4 && len(parts) != 5 {
		return nil, errors.Errorf("input %q must have 4 or 5 colon separated parts", inputString)
	}

	transactionID, err := externalapi.NewDomainTransactionIDFromString(parts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction id in input %q", inputString)
	}
	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid index in input %q", inputString)
	}
	amount, err := parseSompi(parts[2])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount in input %q", inputString)
	}
	scriptPublicKey, err := parseScriptPublicKey(parts[3])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid script public key in input %q", inputString)
	}

	input := pskt.NewInput(*externalapi.NewDomainOutpoint(transactionID, uint32(index)),
		utxo.NewUTXOEntry(amount, scriptPublicKey, false, 0))
	if len(parts) == 5 {
		input.RedeemScript, err = hex.DecodeString(parts[4])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid redeem script in input %q", inputString)
		}
	}
	return input, nil
}

// parseOutput parses <amount>:<script public key>
func parseOutput(outputString string) (*pskt.Output, error) {
	parts := strings.Split(outputString, ":")
	if len(parts) != 2 {
		return nil, errors.Errorf("output %q must have 2 colon separated parts", outputString)
	}
	amount, err := parseSompi(parts[0])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount in output %q", outputString)
	}
	scriptPublicKey, err := parseScriptPublicKey(parts[1])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid script public key in output %q", outputString)
	}
	return pskt.NewOutput(amount, scriptPublicKey), nil
}

func parseSompi(amountString string) (uint64, error) {
	amount, err := strconv.ParseUint(amountString, 10, 64)
	if err != nil {
		return 0, err
	}
	if amount > constants.MaxSompi {
		return 0, errors.Errorf("%d sompi is more than the total supply", amount)
	}
	return amount, nil
}

func parseScriptPublicKey(scriptHex string) (*externalapi.ScriptPublicKey, error) {
	script, err := hex.DecodeString(scriptHex)
	if err != nil {
		return nil, err
	}
	if len(script) == 0 {
		return nil, errors.New("empty script")
	}
	return &externalapi.ScriptPublicKey{Script: script, Version: 0}, nil
}
