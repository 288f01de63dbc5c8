package jobs

import (
	"context"
	"errors"
	"testing"
)

type fakeJob struct {
	name string
	spec string
	runs int
	err  error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) CronSpec() string { return j.spec }
func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRegisterValidatesCronSpec(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	defer s.Stop()

	if err := s.Register(&fakeJob{name: "good", spec: "10 0 * * *"}); err != nil {
		t.Errorf("Expected valid spec to register, got: %v", err)
	}

	if err := s.Register(&fakeJob{name: "bad", spec: "not a cron line"}); err == nil {
		t.Error("Expected invalid cron spec to be rejected")
	}
}

func TestRunNow(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	defer s.Stop()

	job := &fakeJob{name: "close", spec: "10 0 * * *"}
	if err := s.Register(job); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	if err := s.RunNow("close"); err != nil {
		t.Errorf("RunNow failed: %v", err)
	}
	if job.runs != 1 {
		t.Errorf("Expected 1 run, got %d", job.runs)
	}

	if err := s.RunNow("missing"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestRunNowPropagatesJobError(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	defer s.Stop()

	wantErr := errors.New("day not closeable")
	job := &fakeJob{name: "close", spec: "10 0 * * *", err: wantErr}
	if err := s.Register(job); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	if err := s.RunNow("close"); !errors.Is(err, wantErr) {
		t.Errorf("Expected job error to propagate, got: %v", err)
	}
}

func TestGetStatus(t *testing.T) {
	s, err := NewScheduler()
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	defer s.Stop()

	if err := s.Register(&fakeJob{name: "close", spec: "10 0 * * *"}); err != nil {
		t.Fatalf("Failed to register job: %v", err)
	}

	status := s.GetStatus()
	entry, ok := status["close"]
	if !ok {
		t.Fatal("Expected status entry for registered job")
	}
	if entry.CronSpec != "10 0 * * *" {
		t.Errorf("Expected cron spec in status, got %q", entry.CronSpec)
	}
}
