package main

import (
	"io"

	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt/serialization"
	"github.com/pkg/errors"
)

func combine(conf *combineConfig, out io.Writer) error {
	var combined *pskt.Combiner
	for i, documentHex := range conf.PSKTs {
		document, err := serialization.DecodePSKTFromHex(documentHex)
		if err != nil {
			return errors.Wrapf(err, "document %d", i)
		}
		combiner, err := pskt.ResumeCombiner(document)
		if err != nil {
			return errors.Wrapf(err, "document %d", i)
		}
		if combined == nil {
			combined = combiner
			continue
		}
		combined, err = combined.Combine(combiner)
		if err != nil {
			return errors.Wrapf(err, "document %d", i)
		}
	}

	log.Infof("Combined %d documents", len(conf.PSKTs))
	return writeDocument(out, combined.Inner())
}
