package main

import (
	"context"
	"io"

	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
)

func finalize(conf *finalizeConfig, out io.Writer) error {
	document, err := conf.readDocument()
	if err != nil {
		return err
	}
	finalizer, err := pskt.ResumeFinalizer(document)
	if err != nil {
		return err
	}
	err = finalizer.Finalize(context.Background(), pskt.FinalizeStandard)
	if err != nil {
		return err
	}
	log.Infof("Finalized transaction %s", finalizer.ID())
	return writeDocument(out, finalizer.Inner())
}
