package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	JobPayslipGeneration = "payslip_generation"
)

type Func func(context.Context) error

type job struct {
	Type string
	Key  string
	Run  Func
}

// Service runs background work on a single worker goroutine fed by a
// bounded queue. Jobs that do not fit in the queue are dropped and logged.
type Service struct {
	queue chan job
	wg    sync.WaitGroup
}

func New(size int) *Service {
	if size <= 0 {
		size = 128
	}
	return &Service{queue: make(chan job, size)}
}

func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)
}

// Wait blocks until the worker has exited after ctx cancellation.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType, key string, run Func) bool {
	select {
	case s.queue <- job{Type: jobType, Key: key, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "key", key)
		return false
	}
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			s.runJob(ctx, j)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) {
	start := time.Now()
	if err := j.Run(ctx); err != nil {
		slog.Warn("job run failed", "jobType", j.Type, "key", j.Key, "err", err)
		return
	}
	slog.Debug("job run completed", "jobType", j.Type, "key", j.Key, "durationMs", time.Since(start).Milliseconds())
}
