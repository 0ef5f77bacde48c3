// internal/poller/scheduler.go
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives every polling job from a single ticker. The ticker only
// runs while at least one job is registered.
type Scheduler struct {
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	jobs   map[string]*Job
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// Job is one registered polling task.
type Job struct {
	key       string
	run       func(ctx context.Context)
	ctx       context.Context
	cancel    context.CancelFunc
	running   atomic.Bool
	scheduler *Scheduler
	wg        sync.WaitGroup
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		logger:   logger.Named("poll-scheduler"),
		jobs:     make(map[string]*Job),
	}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Schedule registers run under key and fires it immediately. A key that is
// already registered returns the existing job, unless that job was removed
// and is only waiting to be unregistered; then it is replaced.
func (s *Scheduler) Schedule(key string, run func(ctx context.Context)) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[key]; ok && j.ctx.Err() == nil {
		return j
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{key: key, run: run, ctx: ctx, cancel: cancel, scheduler: s}
	s.jobs[key] = j

	if s.stop == nil && !s.closed {
		s.startLocked()
	}
	j.fire()

	s.logger.Debug("Job scheduled", zap.String("key", key), zap.Int("jobs", len(s.jobs)))
	return j
}

// Remove cancels the job's context, aborting an in-flight run, and
// unregisters it. The ticker stops when no jobs remain.
func (j *Job) Remove() {
	j.cancel()

	s := j.scheduler
	s.mu.Lock()
	if cur, ok := s.jobs[j.key]; ok && cur == j {
		delete(s.jobs, j.key)
	}
	var done chan struct{}
	if len(s.jobs) == 0 && s.stop != nil {
		close(s.stop)
		done = s.done
		s.stop, s.done = nil, nil
	}
	s.mu.Unlock()

	if done != nil {
		<-done
		s.logger.Debug("Ticker released")
	}
}

// Wait blocks until any in-flight run of the job has returned.
func (j *Job) Wait() {
	j.wg.Wait()
}

// Active reports whether the ticker goroutine is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Close cancels every job and stops the ticker for good.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	for _, j := range jobs {
		j.Remove()
		j.Wait()
	}
}

func (s *Scheduler) startLocked() {
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-stop:
				return
			}
		}
	}()
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	for _, j := range jobs {
		j.fire()
	}
}

// fire starts a run unless the previous one is still in flight.
func (j *Job) fire() {
	if j.ctx.Err() != nil || !j.running.CompareAndSwap(false, true) {
		return
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer j.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				j.scheduler.logger.Error("Polling job panicked",
					zap.String("key", j.key),
					zap.Any("panic", r))
			}
		}()
		j.run(j.ctx)
	}()
}
