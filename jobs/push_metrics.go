// Package jobs holds the scheduled job implementations for the exporter.
package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/wxgauge/nws-exporter/metrics"
)

// MetricsRecorderInterface defines the interface for recording the current
// station observations into the OTLP metrics pipeline
type MetricsRecorderInterface interface {
	Record(ctx context.Context) error
}

// PushMetricsJob collects the latest observations for every registered
// station and records them as OTLP gauges, so the periodic reader exports
// fresh values on its next cycle
type PushMetricsJob struct {
	recorder MetricsRecorderInterface
}

// NewPushMetricsJob creates a new push metrics job
func NewPushMetricsJob(recorder MetricsRecorderInterface) *PushMetricsJob {
	if recorder == nil {
		panic("PushMetricsJob requires a non-nil MetricsRecorder")
	}
	return &PushMetricsJob{
		recorder: recorder,
	}
}

func (j *PushMetricsJob) Name() string {
	return "push-metrics"
}

func (j *PushMetricsJob) Run(ctx context.Context) error {
	log.Printf("[push-metrics] Collecting station observations for OTLP export")

	if err := j.recorder.Record(ctx); err != nil {
		return fmt.Errorf("failed to record metrics: %w", err)
	}

	log.Printf("[push-metrics] Station metrics recorded")
	return nil
}

// Ensure metrics.OTELExporter implements MetricsRecorderInterface
var _ MetricsRecorderInterface = (*metrics.OTELExporter)(nil)
