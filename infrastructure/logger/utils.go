package logger

import (
	"time"
)

// LogAndMeasureExecutionTime logs the start of functionName at trace level
// and returns a function that logs its duration at debug level.
//
// Usage: defer LogAndMeasureExecutionTime(log, "CheckScripts")()
func LogAndMeasureExecutionTime(log *Logger, functionName string) (onEnd func()) {
	start := time.Now()
	log.Tracef("%s start", functionName)
	return func() {
		log.Debugf("%s took %s", functionName, time.Since(start))
	}
}
