package sync

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewLogReporter(log.New(&buf, "[watch] ", 0))

	reporter.ReportProgress("Pulling remote changes")
	reporter.ReportError("push rejected")

	output := buf.String()
	if !strings.Contains(output, "[watch] Pulling remote changes") {
		t.Errorf("output %q missing progress line", output)
	}
	if !strings.Contains(output, "[watch] ERROR: push rejected") {
		t.Errorf("output %q missing error line", output)
	}
}
