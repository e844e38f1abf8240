package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wxgauge/nws-exporter/scheduler"
)

var errRecorder = fmt.Errorf("collector unavailable")

// Mock implementations for testing

type MockMetricsRecorder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *MockMetricsRecorder) Record(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func (m *MockMetricsRecorder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Test: successful run records exactly once
func TestPushMetricsJob_Run(t *testing.T) {
	recorder := &MockMetricsRecorder{}
	job := NewPushMetricsJob(recorder)

	err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Job failed: %v", err)
	}

	if recorder.callCount() != 1 {
		t.Errorf("Expected 1 Record call, got %d", recorder.callCount())
	}
}

// Test: recorder error propagates as job failure
func TestPushMetricsJob_RecorderError(t *testing.T) {
	recorder := &MockMetricsRecorder{err: errRecorder}
	job := NewPushMetricsJob(recorder)

	err := job.Run(context.Background())
	if err == nil {
		t.Error("Expected error when recorder fails")
	}
}

// Test: job name
func TestPushMetricsJob_Name(t *testing.T) {
	job := NewPushMetricsJob(&MockMetricsRecorder{})

	if job.Name() != "push-metrics" {
		t.Errorf("Expected name 'push-metrics', got '%s'", job.Name())
	}
}

// Test: panic on nil recorder
func TestNewPushMetricsJob_NilRecorder(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for nil recorder")
		}
	}()
	NewPushMetricsJob(nil)
}

// Test: job runs end to end under the scheduler
func TestPushMetricsJob_Scheduled(t *testing.T) {
	recorder := &MockMetricsRecorder{}
	job := NewPushMetricsJob(recorder)

	s := scheduler.New()
	err := s.AddJob(job, scheduler.NewIntervalSchedule(50*time.Millisecond), scheduler.JobConfig{
		Enabled: true,
		Timeout: 1 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to add job: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if err := s.Stop(); err != nil {
		t.Fatalf("Failed to stop scheduler: %v", err)
	}

	if recorder.callCount() < 1 {
		t.Error("Expected at least 1 scheduled Record call")
	}
}
