// Package stations holds the validated, process-lifetime station registry.
package stations

import (
	"context"
	"fmt"
	"log"

	"github.com/wxgauge/nws-exporter/nws"
)

// maxIDLength bounds configured identifiers; real NWS identifiers are 3-8
// characters, so anything longer is almost certainly a config mistake.
const maxIDLength = 64

// Station is one resolved observation station. URL is the canonical station
// URL used as the station label; ID is the external code (e.g. KBOS).
type Station struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Registry is the immutable set of stations the exporter serves. It is
// constructed once at startup and only read after that, so it is safe for
// concurrent use without locking.
type Registry struct {
	stations []Station
}

// NewRegistry builds a registry from resolved stations. At least one station
// is required.
func NewRegistry(list []Station) (*Registry, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("no stations configured")
	}
	stations := make([]Station, len(list))
	copy(stations, list)
	return &Registry{stations: stations}, nil
}

// Stations returns a copy of the registry entries.
func (r *Registry) Stations() []Station {
	stations := make([]Station, len(r.stations))
	copy(stations, r.stations)
	return stations
}

// Count returns the number of registered stations.
func (r *Registry) Count() int {
	return len(r.stations)
}

// ValidateID checks that a configured identifier is syntactically usable as
// a station path segment.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("station identifier is empty")
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("station identifier %q exceeds %d characters", id, maxIDLength)
	}
	for _, r := range id {
		if r <= ' ' || r == 0x7f {
			return fmt.Errorf("station identifier %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// ValidateIDs checks the full configured station list: non-empty, every
// identifier well-formed, no duplicates. Identifiers are case-preserved and
// compared exactly.
func ValidateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("no stations configured")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("station %q configured more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// MetadataSource resolves a configured identifier to station metadata.
type MetadataSource interface {
	Station(ctx context.Context, station string) (*nws.Station, error)
}

// Resolve validates the configured identifiers and fetches metadata for each
// from the upstream API. Any failure is a configuration error: the exporter
// refuses to start serving metrics for stations it cannot resolve.
func Resolve(ctx context.Context, src MetadataSource, ids []string) (*Registry, error) {
	if err := ValidateIDs(ids); err != nil {
		return nil, err
	}

	list := make([]Station, 0, len(ids))
	for _, id := range ids {
		st, err := src.Station(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve station %q: %w", id, err)
		}

		entry := Station{
			ID:   st.Properties.StationIdentifier,
			URL:  st.Properties.ID,
			Name: st.Properties.Name,
		}
		if entry.ID == "" {
			entry.ID = id
		}
		log.Printf("[stations] Resolved %s: %s", entry.ID, entry.Name)
		list = append(list, entry)
	}

	return NewRegistry(list)
}
