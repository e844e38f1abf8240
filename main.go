package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/wxgauge/nws-exporter/config"
	"github.com/wxgauge/nws-exporter/debug"
	"github.com/wxgauge/nws-exporter/handlers"
	"github.com/wxgauge/nws-exporter/identity"
	"github.com/wxgauge/nws-exporter/jobs"
	"github.com/wxgauge/nws-exporter/metrics"
	"github.com/wxgauge/nws-exporter/nws"
	"github.com/wxgauge/nws-exporter/scheduler"
	"github.com/wxgauge/nws-exporter/stations"
)

// version is set at build time via ldflags
var version = "dev"

type InfoResponse struct {
	Component string `json:"component"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// ExporterInfo backs the /info and /api/config endpoints with the running
// configuration and the resolved station registry.
type ExporterInfo struct {
	cfg      *config.Config
	registry *stations.Registry
}

func NewExporterInfo(cfg *config.Config, registry *stations.Registry) *ExporterInfo {
	return &ExporterInfo{
		cfg:      cfg,
		registry: registry,
	}
}

func (e *ExporterInfo) GetInfo() interface{} {
	hostname, _ := os.Hostname()

	return InfoResponse{
		Component: "nws-exporter",
		Version:   version,
		Hostname:  hostname,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func (e *ExporterInfo) GetVersion() string {
	return version
}

func (e *ExporterInfo) GetAPIURL() string {
	return e.cfg.APIURL
}

func (e *ExporterInfo) GetStationIDs() []string {
	list := e.registry.Stations()
	ids := make([]string, 0, len(list))
	for _, st := range list {
		ids = append(ids, st.ID)
	}
	return ids
}

func (e *ExporterInfo) GetRequestTimeout() time.Duration {
	return e.cfg.RequestTimeout
}

func (e *ExporterInfo) GetOTELMetricsEnabled() bool {
	return e.cfg.OTELMetricsEnabled
}

// setupLogging configures logging to write to both stdout and a log file
func setupLogging() (*os.File, error) {
	logDir := "/var/log/nws-exporter"
	logFile := filepath.Join(logDir, "exporter.log")

	// Try to create log file, but don't fail if we can't
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// If we can't create the log file, just log to stdout
		log.Printf("Warning: could not open log file %s: %v (logging to stdout only)", logFile, err)
		return nil, nil
	}

	// Log to both stdout (systemd journal) and file
	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags)

	return file, nil
}

func main() {
	// Setup logging to both stdout and file
	logFile, _ := setupLogging()
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	// Load configuration from file with environment variable overrides
	cfg, err := config.LoadConfigWithDefaults()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize debug configuration
	debugConfig := debug.NewDebugConfig(cfg.DebugEnabled)
	if debugConfig.IsEnabled() {
		log.Println("Debug mode ENABLED - /debug endpoints available")
	}

	log.Printf("nws-exporter v%s starting", version)
	log.Printf("Configuration: port=%s, api_url=%s, stations=%v, request_timeout=%v, debug=%v",
		cfg.Port, cfg.APIURL, cfg.Stations, cfg.RequestTimeout, cfg.DebugEnabled)

	// Initialize exporter UUID
	exporterUUID, err := identity.NewUUID(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize exporter UUID: %v", err)
	}
	log.Printf("Exporter UUID: %s", exporterUUID)

	// Create the upstream API client
	client, err := nws.NewClient(cfg.APIURL, cfg.UserAgent, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve the configured stations against the live API. A station that
	// cannot be validated or resolved is a configuration error, so the
	// exporter refuses to start.
	registry, err := stations.Resolve(ctx, client, cfg.Stations)
	if err != nil {
		log.Fatalf("Failed to resolve configured stations: %v", err)
	}
	log.Printf("Serving metrics for %d stations", registry.Count())

	collector := metrics.NewCollector(registry, client, metrics.CollectorConfig{
		Timeout:      cfg.RequestTimeout,
		ExporterUUID: exporterUUID.String(),
		Version:      version,
	})

	// Setup HTTP server
	infoProvider := NewExporterInfo(cfg, registry)

	mux := http.NewServeMux()
	handlers.RegisterIndexHandler(mux)
	handlers.RegisterHandlers(mux, infoProvider)
	handlers.RegisterStationsHandler(mux, registry)
	handlers.RegisterConfigHandler(mux, infoProvider)
	metrics.RegisterMetricsHandler(mux, collector)

	// Register debug handlers if debug mode is enabled
	handlers.RegisterDebugHandlers(mux, debugConfig)

	// Initialize OpenTelemetry metrics exporter if enabled
	var otelExporter *metrics.OTELExporter
	var sched *scheduler.Scheduler
	if cfg.OTELMetricsEnabled {
		log.Printf("Initializing OpenTelemetry metrics exporter (endpoint: %s, protocol: %s, interval: %v)",
			cfg.OTELMetricsEndpoint, cfg.OTELMetricsProtocol, cfg.OTELMetricsPushInterval)

		otelConfig := metrics.OTELConfig{
			Endpoint:     cfg.OTELMetricsEndpoint,
			Protocol:     metrics.OTELProtocol(cfg.OTELMetricsProtocol),
			PushInterval: cfg.OTELMetricsPushInterval,
			Insecure:     cfg.OTELMetricsInsecure,
		}

		otelExporter, err = metrics.NewOTELExporter(ctx, collector, otelConfig)
		if err != nil {
			log.Printf("Warning: Failed to initialize OTEL exporter: %v (continuing without OTEL)", err)
			otelExporter = nil
		} else {
			// Drive periodic recording through the scheduler. The job
			// timeout leaves headroom over the collector deadline so a slow
			// upstream never cuts a push short.
			jobTimeout := cfg.RequestTimeout + 5*time.Second
			pushJob := jobs.NewPushMetricsJob(otelExporter)

			sched = scheduler.New()
			if err := sched.AddJob(
				pushJob,
				scheduler.NewIntervalScheduleWithJitter(cfg.OTELMetricsPushInterval, cfg.OTELMetricsPushInterval/10),
				scheduler.JobConfig{
					Enabled: true,
					Timeout: jobTimeout,
				},
			); err != nil {
				log.Fatalf("Failed to add push-metrics job: %v", err)
			}
			log.Printf("Scheduled push-metrics job (interval: %v, timeout: %v)", cfg.OTELMetricsPushInterval, jobTimeout)

			if err := sched.Start(ctx); err != nil {
				log.Fatalf("Failed to start scheduler: %v", err)
			}
			log.Println("Scheduler started")

			// Record once right away so the first periodic export carries data
			if err := sched.RunJobNow(pushJob.Name()); err != nil {
				log.Printf("Warning: failed to trigger initial metrics push: %v", err)
			}

			log.Println("OpenTelemetry metrics exporter started")
		}
	}

	// Wrap with logging middleware if debug enabled
	var handler http.Handler = mux
	if debugConfig.IsEnabled() {
		handler = debug.LoggingMiddleware(debugConfig, mux)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("nws-exporter listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutdown signal received, shutting down gracefully...")

	// Cancel context to stop in-flight collections
	cancel()

	// Stop the scheduler before flushing the exporter so no push starts
	// mid-shutdown
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Printf("Error stopping scheduler: %v", err)
		}
	}

	// Shutdown OTEL exporter if running
	if otelExporter != nil {
		log.Println("Shutting down OpenTelemetry exporter...")
		if err := otelExporter.Shutdown(); err != nil {
			log.Printf("Error shutting down OTEL exporter: %v", err)
		}
	}

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("nws-exporter stopped")
}
