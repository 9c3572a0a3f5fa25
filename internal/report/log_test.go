package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := r.Report(sampleSummary()); err != nil {
		t.Fatalf("Report() = %v, want nil", err)
	}

	out := buf.String()
	for _, want := range []string{
		`msg="run summary"`,
		"employer=mercy-health",
		"created=4",
		"updated=5",
		"failed=1",
		`msg="record error"`,
		"stage=persist",
		`reasons="database is locked"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q\n%s", want, out)
		}
	}
}
