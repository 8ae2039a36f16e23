// Package monitoring carries the shared diagnostic logger for the frame
// loop. Hot-path code logs through Logf so tests can mute it and
// embedders can redirect it.
package monitoring

import "log"

// Logf is the process-wide diagnostic logger, log.Printf by default.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the diagnostic logger. A nil argument installs a
// no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
