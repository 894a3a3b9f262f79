package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests     uint64
	errorRequests     uint64
	rateLimited       uint64
	totalDurationMs   uint64
	payrollGenerated  uint64
	payrollFailed     uint64
	payrollRegenerate uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordPayroll counts the outcome of a payroll computation or batch.
func (c *Collector) RecordPayroll(generated, failed int, regenerated bool) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.payrollGenerated, uint64(generated))
	atomic.AddUint64(&c.payrollFailed, uint64(failed))
	if regenerated {
		atomic.AddUint64(&c.payrollRegenerate, 1)
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
		"requestsTotal":          total,
		"errorsTotal":            atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":       atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":          avg,
		"payrollGeneratedTotal":  atomic.LoadUint64(&c.payrollGenerated),
		"payrollFailedTotal":     atomic.LoadUint64(&c.payrollFailed),
		"payrollRegenerateTotal": atomic.LoadUint64(&c.payrollRegenerate),
	}
}
