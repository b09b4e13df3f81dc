package main

import (
	"context"
	"fmt"
	"io"

	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/model/externalapi"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/processes/transactionvalidator"
	"github.com/biryukovmaxim/rusty-kaspa/domain/consensus/utils/txscript"
	"github.com/biryukovmaxim/rusty-kaspa/util/txmass"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt/serialization"
)

const extractSigCacheSize = 10_000

func extract(conf *extractConfig, out io.Writer) error {
	document, err := conf.readDocument()
	if err != nil {
		return err
	}
	extractor, err := pskt.ResumeExtractor(document)
	if err != nil {
		return err
	}

	var build func(mass uint64) *externalapi.DomainTransaction
	switch {
	case conf.SkipVerify:
		build = extractor.ExtractTxUnchecked()
	case conf.Parallel:
		checker := transactionvalidator.NewScriptChecker(txscript.NewSigCache(extractSigCacheSize))
		build, err = extractor.ExtractTxWith(context.Background(), checker, transactionvalidator.Parallel())
	default:
		build, err = extractor.ExtractTx()
	}
	if err != nil {
		return err
	}

	mass, err := txmass.NewDefaultCalculator().CalculateTransactionOverallMass(build(0))
	if err != nil {
		return err
	}
	tx := build(mass)
	log.Infof("Extracted transaction %s with mass %d", document.Global.ID, mass)

	txHex, err := serialization.EncodeTransactionToHex(tx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, txHex)
	return err
}
