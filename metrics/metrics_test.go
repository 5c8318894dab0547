package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ContainersStarted)
	ContainersStarted.Inc()
	if got := testutil.ToFloat64(ContainersStarted); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
}

func TestRunningContainersGauge(t *testing.T) {
	RunningContainers.Set(3)
	if got := testutil.ToFloat64(RunningContainers); got != 3 {
		t.Errorf("Expected gauge 3, got %v", got)
	}
	RunningContainers.Set(0)
	if got := testutil.ToFloat64(RunningContainers); got != 0 {
		t.Errorf("Expected gauge 0, got %v", got)
	}
}
