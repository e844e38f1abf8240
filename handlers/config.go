package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// ConfigProvider is an interface for components to provide the running
// exporter configuration
type ConfigProvider interface {
	GetVersion() string
	GetAPIURL() string
	GetStationIDs() []string
	GetRequestTimeout() time.Duration
	GetOTELMetricsEnabled() bool
}

// ConfigResponse represents the exporter configuration returned by /api/config
type ConfigResponse struct {
	Version            string   `json:"version"`
	APIURL             string   `json:"apiUrl"`
	Stations           []string `json:"stations"`
	RequestTimeout     string   `json:"requestTimeout"`
	OTELMetricsEnabled bool     `json:"otelMetricsEnabled"`
}

// ConfigHandler creates an HTTP handler for the /api/config endpoint
// It returns the running configuration including stations, upstream URL,
// and timeout settings
func ConfigHandler(provider ConfigProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		config := ConfigResponse{
			Version:            provider.GetVersion(),
			APIURL:             provider.GetAPIURL(),
			Stations:           provider.GetStationIDs(),
			RequestTimeout:     provider.GetRequestTimeout().String(),
			OTELMetricsEnabled: provider.GetOTELMetricsEnabled(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(config); err != nil {
			log.Printf("Error encoding config response: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}

// RegisterConfigHandler registers the /api/config endpoint on the provided mux
func RegisterConfigHandler(mux *http.ServeMux, provider ConfigProvider) {
	mux.HandleFunc("/api/config", ConfigHandler(provider))
	log.Println("Config handler registered at /api/config")
}
