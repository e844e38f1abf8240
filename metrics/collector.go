// Package metrics collects weather observations and renders them in
// Prometheus text exposition format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/wxgauge/nws-exporter/nws"
	"github.com/wxgauge/nws-exporter/stations"
)

// DefaultTimeout bounds a full collection when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// ObservationSource fetches the latest observation for a single station.
type ObservationSource interface {
	LatestObservation(ctx context.Context, stationID string) (*nws.Observation, error)
}

// CollectorConfig holds configuration for the collector
type CollectorConfig struct {
	// Timeout bounds one full collection. Stations still pending when it
	// elapses are reported as down for that scrape.
	Timeout time.Duration
	// ExporterUUID and Version label the exporter info metric.
	ExporterUUID string
	Version      string
}

// Collector gathers observations from all registered stations and maps them
// onto the exported metric families. Every scrape fetches fresh data; the
// collector keeps no state between scrapes.
type Collector struct {
	registry *stations.Registry
	source   ObservationSource
	config   CollectorConfig
}

// NewCollector creates a collector for the given station registry. The
// source is queried once per station on every collection.
func NewCollector(registry *stations.Registry, source ObservationSource, config CollectorConfig) *Collector {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Collector{
		registry: registry,
		source:   source,
		config:   config,
	}
}

// fetchOutcome is the result of one station fetch. Exactly one outcome is
// produced per station per collection, holding either an observation or the
// error that prevented one.
type fetchOutcome struct {
	station stations.Station
	obs     *nws.Observation
	err     error
}

// Collect fetches the latest observation from every registered station
// concurrently and assembles the metric families. A station that fails only
// loses its own samples; the rest of the output is unaffected, so the
// returned error is reserved for collector misconfiguration.
func (c *Collector) Collect(ctx context.Context) (*MetricsData, error) {
	if c.registry == nil || c.source == nil {
		return nil, fmt.Errorf("collector is not wired: missing station registry or observation source")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	outcomes := c.fetchAll(ctx)
	return c.assemble(outcomes), nil
}

// fetchAll issues one fetch per station in its own goroutine and joins the
// results. The channel is buffered for the full station count so fetches
// that outlive the deadline can still deliver and release their connections
// instead of blocking forever.
func (c *Collector) fetchAll(ctx context.Context) []fetchOutcome {
	all := c.registry.Stations()
	results := make(chan fetchOutcome, len(all))

	for _, st := range all {
		go func(st stations.Station) {
			obs, err := c.source.LatestObservation(ctx, st.ID)
			results <- fetchOutcome{station: st, obs: obs, err: err}
		}(st)
	}

	pending := make(map[string]stations.Station, len(all))
	for _, st := range all {
		pending[st.ID] = st
	}

	outcomes := make([]fetchOutcome, 0, len(all))
	for len(pending) > 0 {
		select {
		case outcome := <-results:
			delete(pending, outcome.station.ID)
			outcomes = append(outcomes, outcome)
		case <-ctx.Done():
			// Deadline elapsed. Record every station still pending as a
			// timeout failure and stop waiting; the abandoned fetches drain
			// into the buffered channel on their own time.
			for _, st := range pending {
				outcomes = append(outcomes, fetchOutcome{station: st, err: ctx.Err()})
			}
			return outcomes
		}
	}
	return outcomes
}

// assemble maps fetch outcomes onto the fixed family table. Observation
// values pass through unchanged; the upstream API reports SI units and the
// family names encode them.
func (c *Collector) assemble(outcomes []fetchOutcome) *MetricsData {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].station.ID < outcomes[j].station.ID
	})

	points := make(map[string][]MetricPoint)
	add := func(family string, point MetricPoint) {
		points[family] = append(points[family], point)
	}

	for _, outcome := range outcomes {
		st := outcome.station
		if outcome.err != nil {
			log.Printf("[collector] Station %s: fetch failed (%s): %v", st.ID, classify(outcome.err), outcome.err)
			add(FamilyStationUp, MetricPoint{
				Labels: map[string]string{"station": st.URL},
				Value:  0,
			})
			continue
		}

		props := outcome.obs.Properties
		label := props.Station
		if label == "" {
			label = st.URL
		}

		metaLabels := map[string]string{
			"station":    label,
			"station_id": st.ID,
		}
		if st.Name != "" {
			metaLabels["station_name"] = st.Name
		}
		add(FamilyStation, MetricPoint{Labels: metaLabels, Value: 1})
		add(FamilyStationUp, MetricPoint{
			Labels: map[string]string{"station": label},
			Value:  1,
		})

		// A field missing from the observation contributes no sample at all.
		for _, field := range observationFields(props) {
			if field.measurement.Value == nil {
				continue
			}
			add(field.family, MetricPoint{
				Labels: map[string]string{"station": label},
				Value:  *field.measurement.Value,
			})
		}
	}

	data := &MetricsData{Families: make([]MetricFamily, 0, len(familyOrder)+1)}
	for _, def := range familyOrder {
		pts := points[def.name]
		if len(pts) == 0 {
			continue
		}
		data.Families = append(data.Families, MetricFamily{
			Name:    def.name,
			Help:    def.help,
			Type:    "gauge",
			Metrics: pts,
		})
	}
	data.Families = append(data.Families, c.exporterInfoFamily())
	return data
}

// fieldMapping ties one observation field to its exported family name.
type fieldMapping struct {
	family      string
	measurement nws.Measurement
}

func observationFields(props nws.ObservationProperties) []fieldMapping {
	return []fieldMapping{
		{FamilyElevation, props.Elevation},
		{FamilyTemperature, props.Temperature},
		{FamilyDewpoint, props.Dewpoint},
		{FamilyPressure, props.BarometricPressure},
		{FamilyVisibility, props.Visibility},
		{FamilyHumidity, props.RelativeHumidity},
		{FamilyWindChill, props.WindChill},
	}
}

func (c *Collector) exporterInfoFamily() MetricFamily {
	labels := map[string]string{"version": c.config.Version}
	if c.config.ExporterUUID != "" {
		labels["exporter_uuid"] = c.config.ExporterUUID
	}
	return MetricFamily{
		Name: FamilyExporterInfo,
		Help: "Build and identity information about the exporter",
		Type: "gauge",
		Metrics: []MetricPoint{
			{Labels: labels, Value: 1},
		},
	}
}

// classify names the failure category for the collection log. The deadline
// check runs first because the HTTP client wraps context errors in its own
// transport error.
func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var apiErr *nws.Error
	if errors.As(err, &apiErr) {
		return string(apiErr.Kind)
	}
	return "internal"
}
