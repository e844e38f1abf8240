package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/wxgauge/nws-exporter/stations"
)

// StationsHandler creates an HTTP handler for the /api/stations endpoint.
// It returns the resolved station registry as a JSON array, in registration
// order.
func StationsHandler(registry *stations.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only accept GET requests
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(registry.Stations()); err != nil {
			log.Printf("Error encoding stations response: %v", err)
		}
	}
}

// RegisterStationsHandler registers the /api/stations endpoint on the provided mux
func RegisterStationsHandler(mux *http.ServeMux, registry *stations.Registry) {
	mux.HandleFunc("/api/stations", StationsHandler(registry))
	log.Println("Stations handler registered at /api/stations")
}
