package metrics

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// OTELProtocol selects the OTLP transport protocol
type OTELProtocol string

const (
	OTELProtocolGRPC OTELProtocol = "grpc"
	OTELProtocolHTTP OTELProtocol = "http"
)

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	Endpoint     string
	Protocol     OTELProtocol
	PushInterval time.Duration
	Insecure     bool
}

// OTELExporter mirrors the collected metric families to an OpenTelemetry
// collector. The same Collector feeds both the /metrics endpoint and the
// OTLP push path, so the two views never disagree on names or labels.
type OTELExporter struct {
	collector     *Collector
	config        OTELConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	mu     sync.Mutex
	gauges map[string]metric.Float64Gauge
}

// createExporter builds the OTLP metric exporter for the configured
// protocol. The protocol name is matched case-insensitively.
func createExporter(ctx context.Context, config OTELConfig) (sdkmetric.Exporter, error) {
	switch OTELProtocol(strings.ToLower(string(config.Protocol))) {
	case OTELProtocolGRPC:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(config.Endpoint),
		}
		if config.Insecure {
			opts = append(opts, otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()))
			opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case OTELProtocolHTTP:
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(config.Endpoint),
		}
		if config.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %s", config.Protocol)
	}
}

// NewOTELExporter creates a new OTEL metrics exporter fed by the given
// collector. Recording is driven by the caller; the periodic reader exports
// whatever was recorded most recently.
func NewOTELExporter(ctx context.Context, collector *Collector, config OTELConfig) (*OTELExporter, error) {
	// Create OTLP exporter
	exporter, err := createExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("nws-exporter"),
			semconv.ServiceVersionKey.String(collector.config.Version),
			attribute.String("exporter.uuid", collector.config.ExporterUUID),
		),
	)
	if err != nil {
		return nil, err
	}

	// Create meter provider with periodic reader
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(config.PushInterval))),
	)

	// Set global meter provider
	otel.SetMeterProvider(meterProvider)

	return &OTELExporter{
		collector:     collector,
		config:        config,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter("nws-exporter"),
		gauges:        make(map[string]metric.Float64Gauge),
	}, nil
}

// Record collects current observations and stores every family on its OTLP
// gauge. Station fetch failures are already folded into the collected data,
// so an error here means the exporter itself is broken.
func (e *OTELExporter) Record(ctx context.Context) error {
	data, err := e.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect metrics for OTLP push: %w", err)
	}

	for _, family := range data.Families {
		gauge, err := e.gauge(family.Name, family.Help)
		if err != nil {
			return fmt.Errorf("failed to create gauge %s: %w", family.Name, err)
		}
		for _, point := range family.Metrics {
			attrs := make([]attribute.KeyValue, 0, len(point.Labels))
			for k, v := range point.Labels {
				attrs = append(attrs, attribute.String(k, v))
			}
			gauge.Record(ctx, point.Value, metric.WithAttributes(attrs...))
		}
	}
	return nil
}

// gauge returns the Float64Gauge for a family, creating it on first use.
// Families come and go between collections as observation fields appear and
// disappear, so gauges cannot be created up front.
func (e *OTELExporter) gauge(name, help string) (metric.Float64Gauge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if g, ok := e.gauges[name]; ok {
		return g, nil
	}
	g, err := e.meter.Float64Gauge(name, metric.WithDescription(help))
	if err != nil {
		return nil, err
	}
	e.gauges[name] = g
	return g, nil
}

// Shutdown flushes buffered metrics and shuts down the OTEL exporter
func (e *OTELExporter) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.meterProvider.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down OTEL meter provider: %v", err)
		return err
	}

	return nil
}
