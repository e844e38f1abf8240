package nws

import "encoding/json"

// Measurement is a unit-tagged numeric value from the observation schema.
// Value is nil when the station did not report the field.
type Measurement struct {
	UnitCode       string   `json:"unitCode"`
	Value          *float64 `json:"value"`
	QualityControl string   `json:"qualityControl"`
}

// UnmarshalJSON tolerates schema drift in the upstream API: a field whose
// shape or type no longer matches is treated as absent rather than failing
// the whole observation.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	type measurement Measurement
	var raw measurement
	if err := json.Unmarshal(data, &raw); err != nil {
		*m = Measurement{}
		return nil
	}
	*m = Measurement(raw)
	return nil
}

// ObservationProperties holds the subset of the observation document the
// exporter republishes. Every measurement is independently optional.
type ObservationProperties struct {
	Station            string      `json:"station"`
	Timestamp          string      `json:"timestamp"`
	Elevation          Measurement `json:"elevation"`
	Temperature        Measurement `json:"temperature"`
	Dewpoint           Measurement `json:"dewpoint"`
	BarometricPressure Measurement `json:"barometricPressure"`
	Visibility         Measurement `json:"visibility"`
	RelativeHumidity   Measurement `json:"relativeHumidity"`
	WindChill          Measurement `json:"windChill"`
}

// Observation is the geo+json document returned by
// /stations/{id}/observations/latest.
type Observation struct {
	Properties ObservationProperties `json:"properties"`
}

// StationProperties holds station metadata from /stations/{id}.
type StationProperties struct {
	ID                string `json:"@id"`
	StationIdentifier string `json:"stationIdentifier"`
	Name              string `json:"name"`
}

// Station is the geo+json document returned by /stations/{id}.
type Station struct {
	Properties StationProperties `json:"properties"`
}
