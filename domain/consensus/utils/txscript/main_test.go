package txscript

import (
	"os"
	"testing"

	"github.com/biryukovmaxim/rusty-kaspa/infrastructure/logger"
)

func TestMain(m *testing.M) {
	// set log level to trace, so that logClosures passed to log.Tracef are covered
	log.SetLevel(logger.LevelTrace)

	os.Exit(m.Run())
}
