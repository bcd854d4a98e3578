package sync

import "log"

// Reporter receives user-visible status during pull and sync.
//
// The engine never prints; every progress message and every recoverable
// failure goes through this interface, and the top-level Pull/Sync
// operations communicate their outcome solely through it plus their
// boolean result.
type Reporter interface {
	// ReportProgress reports a status message
	ReportProgress(message string)

	// ReportError reports a failure the user has to act on
	ReportError(message string)
}

// LogReporter is a Reporter writing to a log.Logger.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a Reporter writing to the given logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// ReportProgress implements Reporter.
func (r *LogReporter) ReportProgress(message string) {
	r.logger.Printf("%s", message)
}

// ReportError implements Reporter.
func (r *LogReporter) ReportError(message string) {
	r.logger.Printf("ERROR: %s", message)
}
