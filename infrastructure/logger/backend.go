package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const normalLogSize = 512

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile adds the full path and line number of the logging
	// callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile adds the file name and line number of the logging
	// callsite, e.g. main.go:123. Takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// flagsEnvVar is a comma separated list of "longfile" and "shortfile".
const flagsEnvVar = "PSKT_LOGFLAGS"

// defaultFlags is a variable rather than an init() assignment because
// BackendLog is built from it during variable initialization.
var defaultFlags = flagsFromEnv()

func flagsFromEnv() uint32 {
	var flags uint32
	for _, name := range strings.Split(os.Getenv(flagsEnvVar), ",") {
		switch strings.TrimSpace(name) {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

// Rotation holds the size threshold and the number of kept rolls of a
// rotating log file.
type Rotation struct {
	ThresholdKB int64
	MaxRolls    int
}

// DefaultRotation keeps 8 files of up to 100 MB each.
var DefaultRotation = Rotation{ThresholdKB: 100 * 1000, MaxRolls: 8}

type logWriter struct {
	io.WriteCloser
	level Level
}

// Backend serializes the entries of all its subsystem loggers into a set of
// writers, each filtering by its own level.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []logWriter
	writeChan chan logEntry
	done      chan struct{}
	closeOnce sync.Once
}

// NewBackendWithFlags creates a Backend with the given flags instead of the
// ones read from the environment.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{
		flag:      flags,
		writeChan: make(chan logEntry),
		done:      make(chan struct{}),
	}
}

// NewBackend creates a new logger backend.
func NewBackend() *Backend {
	return NewBackendWithFlags(defaultFlags)
}

// AddLogWriter adds a writer that receives every entry at or above logLevel.
// Writers can only be added before Run.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	b.writers = append(b.writers, logWriter{WriteCloser: writer, level: logLevel})
	return nil
}

// AddLogFile adds a rotating log file with DefaultRotation. Missing parent
// directories are created.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddRotatingLogFile(logFile, logLevel, DefaultRotation)
}

// AddRotatingLogFile adds a log file rotated according to rotation.
func (b *Backend) AddRotatingLogFile(logFile string, logLevel Level, rotation Rotation) error {
	if b.IsRunning() {
		return errors.New("the logger is already running")
	}
	if logDir := filepath.Dir(logFile); logDir != "." {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, rotation.ThresholdKB, false, rotation.MaxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.AddLogWriter(r, logLevel)
}

// Run starts delivering entries to the writers. It may only be called once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger is already running")
	}
	go func() {
		defer close(b.done)
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		for entry := range b.writeChan {
			for _, writer := range b.writers {
				if entry.level >= writer.level {
					_, _ = writer.Write(entry.log)
				}
			}
		}
	}()
	return nil
}

// IsRunning returns whether Run has been called and Close has not.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close flushes pending entries and closes all writers. It is safe to call
// more than once, and on a backend that was never started.
func (b *Backend) Close() {
	b.closeOnce.Do(func() {
		wasRunning := atomic.SwapUint32(&b.isRunning, 0) != 0
		close(b.writeChan)
		if wasRunning {
			<-b.done
		}
		for _, writer := range b.writers {
			_ = writer.Close()
		}
	})
}

// Logger returns a logger for the given subsystem tag. Loggers start with
// LevelOff so that library packages are silent until configured.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{LevelOff, subsystemTag, b, b.writeChan}
}
