package logger

import "strings"

// Level is the level at which a logger is configured. Messages below the
// configured level are dropped.
type Level uint32

// Level constants.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelNames = [...]string{"trace", "debug", "info", "warn", "error", "critical", "off"}

// LevelFromString accepts both the long name and the three letter tag of a
// level, case-insensitively. LevelInfo and false are returned for anything
// else.
func LevelFromString(s string) (Level, bool) {
	s = strings.ToLower(s)
	for i := range levelNames {
		if s == levelNames[i] || s == strings.ToLower(levelTags[i]) {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// String returns the three letter tag used in log lines.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelTags[l]
}
