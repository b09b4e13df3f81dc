package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt/serialization"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

func (f *PSKTFlags) readDocument() (*pskt.Inner, error) {
	if f.PSKT == "" && f.PSKTFile == "" {
		return nil, errors.Errorf("Either --pskt or --pskt-file is required")
	}
	if f.PSKT != "" && f.PSKTFile != "" {
		return nil, errors.Errorf("Both --pskt and --pskt-file cannot be passed at the same time")
	}

	documentHex := f.PSKT
	if f.PSKTFile != "" {
		documentHexBytes, err := os.ReadFile(f.PSKTFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not read hex from %s", f.PSKTFile)
		}
		documentHex = string(documentHexBytes)
	}
	return serialization.DecodePSKTFromHex(documentHex)
}

func writeDocument(out io.Writer, document *pskt.Inner) error {
	documentHex, err := serialization.EncodePSKTToHex(document)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, documentHex)
	return err
}

// readPrivateKey decodes privateKeyHex, or prompts for the key without
// echoing it when privateKeyHex is empty.
func readPrivateKey(privateKeyHex string) ([]byte, error) {
	if privateKeyHex == "" {
		stdin := int(os.Stdin.Fd())
		if !term.IsTerminal(stdin) {
			return nil, errors.New("--private-key is required when stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, "Private key (hex): ")
		input, err := term.ReadPassword(stdin)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, errors.Wrap(err, "Could not read the private key")
		}
		privateKeyHex = string(input)
	}

	privateKey, err := hex.DecodeString(strings.TrimSpace(privateKeyHex))
	if err != nil {
		return nil, errors.Wrap(err, "The private key is not valid hex")
	}
	return privateKey, nil
}
