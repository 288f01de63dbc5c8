package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	CronSpec() string
	Run(ctx context.Context) error
}

// Scheduler manages and runs scheduled jobs on top of gocron.
type Scheduler struct {
	engine  gocron.Scheduler
	jobs    map[string]Job
	handles map[string]gocron.Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler. All jobs run in UTC.
func NewScheduler() (*Scheduler, error) {
	engine, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		engine:  engine,
		jobs:    make(map[string]Job),
		handles: make(map[string]gocron.Job),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Register adds a job to the scheduler. The cron spec is validated here so a
// bad configuration fails at startup rather than at first run.
func (s *Scheduler) Register(job Job) error {
	if _, err := cron.ParseStandard(job.CronSpec()); err != nil {
		return fmt.Errorf("invalid cron spec %q for job %s: %w", job.CronSpec(), job.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Name()] = job
	log.Printf("✅ [SCHEDULER] Registered job: %s (%s)", job.Name(), job.CronSpec())
	return nil
}

// Start begins running all registered jobs
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	for name, job := range s.jobs {
		handle, err := s.engine.NewJob(
			gocron.CronJob(job.CronSpec(), false),
			gocron.NewTask(s.runner(job)),
			gocron.WithName(name),
		)
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", name, err)
		}
		s.handles[name] = handle

		if next, err := handle.NextRun(); err == nil {
			log.Printf("⏰ [SCHEDULER] Job '%s' next run at %s", name, next.Format(time.RFC3339))
		}
	}

	s.engine.Start()
	s.running = true
	log.Printf("🚀 [SCHEDULER] Started with %d jobs", len(s.jobs))
	return nil
}

func (s *Scheduler) runner(job Job) func() {
	return func() {
		s.wg.Add(1)
		defer s.wg.Done()

		log.Printf("▶️  [SCHEDULER] Running job: %s", job.Name())
		startTime := time.Now()

		if err := job.Run(s.ctx); err != nil {
			log.Printf("❌ [SCHEDULER] Job '%s' failed: %v", job.Name(), err)
			return
		}

		log.Printf("✅ [SCHEDULER] Job '%s' completed in %v", job.Name(), time.Since(startTime))
	}
}

// Stop gracefully stops all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	log.Println("🛑 [SCHEDULER] Stopping job scheduler...")
	s.running = false
	s.mu.Unlock()

	if err := s.engine.Shutdown(); err != nil {
		log.Printf("⚠️  [SCHEDULER] Shutdown error: %v", err)
	}

	s.cancel()
	s.wg.Wait()
	log.Println("✅ [SCHEDULER] Job scheduler stopped")
}

// RunNow immediately runs a specific job (useful for testing)
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("job not found: %s", name)
	}

	log.Printf("🚀 [SCHEDULER] Running job '%s' immediately", name)
	return job.Run(s.ctx)
}

// JobStatus represents the status of a job
type JobStatus struct {
	Name        string    `json:"name"`
	CronSpec    string    `json:"cron_spec"`
	NextRunTime time.Time `json:"next_run_time"`
}

// GetStatus returns the status of all jobs
func (s *Scheduler) GetStatus() map[string]JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]JobStatus)
	for name, job := range s.jobs {
		entry := JobStatus{Name: name, CronSpec: job.CronSpec()}
		if handle, ok := s.handles[name]; ok {
			if next, err := handle.NextRun(); err == nil {
				entry.NextRunTime = next
			}
		}
		status[name] = entry
	}
	return status
}
