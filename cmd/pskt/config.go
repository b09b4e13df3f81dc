package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	createSubCmd   = "create"
	signSubCmd     = "sign"
	combineSubCmd  = "combine"
	finalizeSubCmd = "finalize"
	extractSubCmd  = "extract"
	inspectSubCmd  = "inspect"
)

type configFlags struct {
	LogLevel string `long:"loglevel" short:"d" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems" default:"info"`
	LogFile  string `long:"logfile" description:"Write logs to this file in addition to stderr"`
}

// PSKTFlags selects the document a sub-command reads
type PSKTFlags struct {
	PSKT     string `long:"pskt" short:"p" description:"The document to operate on (encoded in hex)"`
	PSKTFile string `long:"pskt-file" short:"F" description:"A file holding the document to operate on (encoded in hex)"`
}

type createConfig struct {
	Inputs           []string `long:"input" short:"i" description:"An input to spend, as <txid>:<index>:<amount in sompi>:<script public key hex>[:<redeem script hex>]" required:"true"`
	Outputs          []string `long:"output" short:"o" description:"An output to create, as <amount in sompi>:<script public key hex>" required:"true"`
	FallbackLockTime uint64   `long:"fallback-locktime" description:"The lock time used when no input asks for one"`
}

type signConfig struct {
	PSKTFlags
	PrivateKey     string `long:"private-key" short:"k" description:"The private key of the signer (encoded in hex). Prompted for when omitted"`
	ECDSA          bool   `long:"ecdsa" description:"Create ECDSA signatures instead of Schnorr signatures"`
	DerivationPath string `long:"derivation-path" description:"The derivation path of the signing key from its master key" default:"m"`
}

type combineConfig struct {
	PSKTs []string `long:"pskt" short:"p" description:"A document to combine (encoded in hex). Pass at least two" required:"true"`
}

type finalizeConfig struct {
	PSKTFlags
}

type extractConfig struct {
	PSKTFlags
	SkipVerify bool `long:"skip-verify" description:"Do not verify the signature scripts before extracting"`
	Parallel   bool `long:"parallel" description:"Verify the inputs concurrently"`
}

type inspectConfig struct {
	PSKTFlags
}

func parseCommandLine(args []string) (cfg *configFlags, subCommand string, config interface{}, err error) {
	cfg = &configFlags{}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)

	createConf := &createConfig{}
	parser.AddCommand(createSubCmd, "Creates a new document",
		"Creates a document spending the given inputs into the given outputs, ready to be signed", createConf)

	signConf := &signConfig{}
	parser.AddCommand(signSubCmd, "Signs every input of a document",
		"Signs every input of a document with the given private key", signConf)

	combineConf := &combineConfig{}
	parser.AddCommand(combineSubCmd, "Combines documents signed by different parties",
		"Merges the partial signatures and metadata of documents built from the same transaction", combineConf)

	finalizeConf := &finalizeConfig{}
	parser.AddCommand(finalizeSubCmd, "Finalizes a fully signed document",
		"Builds the final signature scripts of a pay-to-pubkey or multisig document", finalizeConf)

	extractConf := &extractConfig{}
	parser.AddCommand(extractSubCmd, "Extracts the transaction of a finalized document",
		"Verifies the final signature scripts and prints the transaction, with its mass set", extractConf)

	inspectConf := &inspectConfig{}
	parser.AddCommand(inspectSubCmd, "Describes a document",
		"Prints the fields of a document in a human readable form", inspectConf)

	_, err = parser.ParseArgs(args)
	if err != nil {
		return nil, "", nil, err
	}

	switch parser.Command.Active.Name {
	case createSubCmd:
		config = createConf
	case signSubCmd:
		config = signConf
	case combineSubCmd:
		if len(combineConf.PSKTs) < 2 {
			return nil, "", nil, errors.New("combine requires at least two documents")
		}
		config = combineConf
	case finalizeSubCmd:
		config = finalizeConf
	case extractSubCmd:
		config = extractConf
	case inspectSubCmd:
		config = inspectConf
	}
	return cfg, parser.Command.Active.Name, config, nil
}
