// Package scheduler runs periodic jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"library-backend/internal/platform/logging"
)

// Job receives a context carrying a fresh run id as its request id.
type Job func(ctx context.Context)

type Scheduler struct {
	cron  *cron.Cron
	chain cron.Chain
	log   logging.Logger

	mu      sync.Mutex
	jobs    map[string]cron.Job
	stopped bool
	manual  sync.WaitGroup
}

// New builds a scheduler using standard 5-field cron expressions (plus
// descriptors such as @daily or @every 1h). A panicking job is logged and
// recovered; a run that is still going when the next one is due is skipped.
func New(log logging.Logger) *Scheduler {
	log = log.With("component", "scheduler")
	cl := cronLogger{log: log}
	return &Scheduler{
		cron:  cron.New(cron.WithLogger(cl)),
		chain: cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		log:   log,
		jobs:  map[string]cron.Job{},
	}
}

// Schedule registers job under name. It fails on a malformed expression or a
// name already in use.
func (s *Scheduler) Schedule(spec, name string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("schedule %s: already registered", name)
	}

	wrapped := s.chain.Then(cron.FuncJob(func() {
		ctx := logging.WithRequestID(context.Background(), uuid.NewString())
		s.log.Info(ctx, "job started", "job", name)
		job(ctx)
		s.log.Info(ctx, "job finished", "job", name)
	}))
	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.jobs[name] = wrapped
	s.log.Info(context.Background(), "job scheduled", "job", name, "spec", spec)
	return nil
}

// RunNow starts one out-of-schedule run of a registered job in the background.
// It shares the job's chain, so it is skipped while a run is in progress, and
// Stop waits for it.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("run %s: scheduler stopped", name)
	}
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("run %s: no such job", name)
	}
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		job.Run()
	}()
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for the running ones, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.manual.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger feeds cron's own logging into ours. cron reports every wake-up at
// info level, so that goes to debug.
type cronLogger struct{ log logging.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(context.Background(), "cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(context.Background(), "cron: "+msg, append(keysAndValues, "error", err)...)
}
