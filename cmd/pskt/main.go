package main

import (
	"fmt"
	"io"
	"os"

	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

func main() {
	cfg, subCmd, config, err := parseCommandLine(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		printErrorAndExit(err)
	}

	err = initLog(cfg)
	if err != nil {
		printErrorAndExit(err)
	}
	defer logger.BackendLog.Close()

	err = run(subCmd, config, os.Stdout)
	if err != nil {
		log.Errorf("%s failed: %+v", subCmd, err)
		printErrorAndExit(err)
	}
}

func run(subCmd string, config interface{}, out io.Writer) error {
	switch subCmd {
	case createSubCmd:
		return create(config.(*createConfig), out)
	case signSubCmd:
		return sign(config.(*signConfig), out)
	case combineSubCmd:
		return combine(config.(*combineConfig), out)
	case finalizeSubCmd:
		return finalize(config.(*finalizeConfig), out)
	case extractSubCmd:
		return extract(config.(*extractConfig), out)
	case inspectSubCmd:
		return inspect(config.(*inspectConfig), out)
	default:
		return errors.Errorf("Unknown sub-command '%s'", subCmd)
	}
}

// initLog sends logs to stderr, keeping stdout for the documents the
// sub-commands print, and to the log file when one is configured.
func initLog(cfg *configFlags) error {
	return logger.InitLog(os.Stderr, cfg.LogFile, cfg.LogLevel)
}

func printErrorAndExit(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
