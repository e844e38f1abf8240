package metrics

// MetricPoint represents a single metric observation with labels and value
type MetricPoint struct {
	Labels map[string]string
	Value  float64
}

// MetricFamily represents a family of metrics (e.g., all nws_temperature_degrees metrics)
type MetricFamily struct {
	Name    string        // Metric name (e.g., "nws_temperature_degrees")
	Help    string        // Help text
	Type    string        // Metric type (e.g., "gauge")
	Metrics []MetricPoint // All metric points in this family
}

// MetricsData holds all metrics to be exported
type MetricsData struct {
	Families []MetricFamily
}

// Exported family names. These are a stable contract: dashboards reference
// them directly, so they never change across releases.
const (
	FamilyStation      = "nws_station"
	FamilyStationUp    = "nws_station_up"
	FamilyElevation    = "nws_elevation_meters"
	FamilyTemperature  = "nws_temperature_degrees"
	FamilyDewpoint     = "nws_dewpoint_degrees"
	FamilyPressure     = "nws_barometric_pressure_pascals"
	FamilyVisibility   = "nws_visibility_meters"
	FamilyHumidity     = "nws_relative_humidity"
	FamilyWindChill    = "nws_wind_chill_degrees"
	FamilyExporterInfo = "nws_exporter_info"
)

// familyOrder fixes the emission order of station families so scrape output
// is deterministic.
var familyOrder = []struct {
	name string
	help string
}{
	{FamilyStation, "Station metadata for each configured station"},
	{FamilyStationUp, "Whether the most recent observation fetch for the station succeeded"},
	{FamilyElevation, "Station elevation in meters"},
	{FamilyTemperature, "Temperature in degrees celsius"},
	{FamilyDewpoint, "Dewpoint in degrees celsius"},
	{FamilyPressure, "Barometric pressure in pascals"},
	{FamilyVisibility, "Visibility in meters"},
	{FamilyHumidity, "Relative humidity (0 to 100)"},
	{FamilyWindChill, "Wind chill in degrees celsius"},
}
