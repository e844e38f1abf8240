package scheduler

// This file demonstrates how to set up and use the scheduler
// It's not meant to be executed directly, but shows the intended usage pattern

/*
Example usage in main.go or setup function:

func setupScheduler(cfg *config.Config, exporter *metrics.OTELExporter) *scheduler.Scheduler {
	s := scheduler.New()

	// Push collected station metrics to the OTLP endpoint on the configured
	// interval. Jitter spreads a fleet of exporters so they do not all push
	// at the same instant.
	if cfg.OTELMetricsEnabled {
		pushJob := jobs.NewPushMetricsJob(exporter)
		s.AddJob(
			pushJob,
			scheduler.NewIntervalScheduleWithJitter(cfg.OTELMetricsPushInterval, cfg.OTELMetricsPushInterval/10),
			scheduler.JobConfig{
				Enabled: true,
				Timeout: 30*time.Second,
			},
		)
	}

	return s
}

func main() {
	// Create scheduler
	s := setupScheduler(cfg, exporter)

	// Start scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Record once right away so the first OTLP export carries data
	if err := s.RunJobNow("push-metrics"); err != nil {
		log.Printf("Failed to trigger initial push: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down scheduler...")
	if err := s.Stop(); err != nil {
		log.Printf("Error stopping scheduler: %v", err)
	}
}
*/
