package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	clientErrors    uint64
	totalDurationMs uint64
	calculations    uint64
	payrollRuns     uint64
	employeesPaid   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordCalculation() {
	atomic.AddUint64(&c.calculations, 1)
}

func (c *Collector) RecordRun(employees int) {
	atomic.AddUint64(&c.payrollRuns, 1)
	if employees > 0 {
		atomic.AddUint64(&c.employeesPaid, uint64(employees))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        atomic.LoadUint64(&c.errorRequests),
		"clientErrorsTotal":  atomic.LoadUint64(&c.clientErrors),
		"avgDurationMs":      avg,
		"totalDurationMs":    totalMs,
		"calculationsTotal":  atomic.LoadUint64(&c.calculations),
		"payrollRunsTotal":   atomic.LoadUint64(&c.payrollRuns),
		"employeesPaidTotal": atomic.LoadUint64(&c.employeesPaid),
	}
}
