package runtime

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(old)
	f()
	return buf.String()
}

func TestReportPullLogsStatusLines(t *testing.T) {
	stream := strings.NewReader(
		`{"status":"Pulling from demo/app"}` + "\n" +
			`{"status":"Downloading","id":"abc123","progress":"[=>   ] 1MB/5MB"}` + "\n" +
			`{"status":"Pull complete","id":"abc123"}` + "\n")

	out := captureLog(t, func() { ReportPull(stream) })

	for _, want := range []string{"Pulling from demo/app", "Downloading", "Pull complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestReportPullForwardsErrors(t *testing.T) {
	stream := strings.NewReader(`{"error":"manifest unknown"}`)

	out := captureLog(t, func() { ReportPull(stream) })
	if !strings.Contains(out, "manifest unknown") {
		t.Errorf("Expected error forwarded to log, got:\n%s", out)
	}
}

func TestReportPullStopsOnGarbage(t *testing.T) {
	stream := strings.NewReader(`{"status":"ok"}` + "\nnot json at all")

	// Must not panic and must return; decode errors end reporting.
	out := captureLog(t, func() { ReportPull(stream) })
	if !strings.Contains(out, "ok") {
		t.Errorf("Expected the valid message to be reported, got:\n%s", out)
	}
}

func TestReportPullEmptyStream(t *testing.T) {
	ReportPull(strings.NewReader(""))
}

func TestImageRef(t *testing.T) {
	if ref := ImageRef("demo/app", "1.0"); ref != "demo/app:1.0" {
		t.Errorf("ImageRef = %s, expected demo/app:1.0", ref)
	}
	if ref := ImageRef("demo/app", ""); ref != "demo/app:latest" {
		t.Errorf("ImageRef with empty tag = %s, expected demo/app:latest", ref)
	}
}
