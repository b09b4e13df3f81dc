package main

import (
	"context"
	"io"

	"github.com/biryukovmaxim/rusty-kaspa/wallet/pskt"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

func sign(conf *signConfig, out io.Writer) error {
	document, err := conf.readDocument()
	if err != nil {
		return err
	}
	privateKeyBytes, err := readPrivateKey(conf.PrivateKey)
	if err != nil {
		return err
	}
	privateKey, err := secp256k1.DeserializeECDSAPrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		return errors.Wrap(err, "Invalid private key")
	}

	keySource, err := signerKeySource(privateKey, conf.DerivationPath)
	if err != nil {
		return err
	}
	signFunc, err := pskt.SignWithPrivateKey(privateKey, keySource, conf.ECDSA)
	if err != nil {
		return err
	}

	signer, err := pskt.ResumeSigner(document)
	if err != nil {
		return err
	}
	err = signer.PassSignature(context.Background(), signFunc)
	if err != nil {
		return err
	}
	log.Infof("Signed %d inputs with key fingerprint %s", len(document.Inputs), keySource.Fingerprint)
	return writeDocument(out, signer.Inner())
}

// signerKeySource describes privateKey as derived along derivationPath from
// itself, since the CLI is handed bare keys rather than a master key.
func signerKeySource(privateKey *secp256k1.ECDSAPrivateKey, derivationPath string) (*pskt.KeySource, error) {
	publicKey, err := privateKey.ECDSAPublicKey()
	if err != nil {
		return nil, err
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return nil, err
	}
	path, err := pskt.ParseDerivationPath(derivationPath)
	if err != nil {
		return nil, err
	}
	return &pskt.KeySource{
		Fingerprint:    pskt.NewFingerprint(serializedPublicKey[:]),
		DerivationPath: path,
	}, nil
}
