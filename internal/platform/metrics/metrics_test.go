package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 20*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.RecordCalculation()
	c.RecordRun(3)
	c.RecordRun(0)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) || snap["clientErrorsTotal"] != uint64(1) {
		t.Fatalf("unexpected error counts %v", snap)
	}
	if snap["avgDurationMs"] != float64(20) {
		t.Fatalf("expected avg 20ms, got %v", snap["avgDurationMs"])
	}
	if snap["payrollRunsTotal"] != uint64(2) || snap["employeesPaidTotal"] != uint64(3) {
		t.Fatalf("unexpected payroll counters %v", snap)
	}
	if snap["calculationsTotal"] != uint64(1) {
		t.Fatalf("expected 1 calculation, got %v", snap["calculationsTotal"])
	}
}
