package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

type testConfigProvider struct {
	version  string
	apiURL   string
	stations []string
	timeout  time.Duration
	otel     bool
}

func (t *testConfigProvider) GetVersion() string               { return t.version }
func (t *testConfigProvider) GetAPIURL() string                { return t.apiURL }
func (t *testConfigProvider) GetStationIDs() []string          { return t.stations }
func (t *testConfigProvider) GetRequestTimeout() time.Duration { return t.timeout }
func (t *testConfigProvider) GetOTELMetricsEnabled() bool      { return t.otel }

func TestConfigHandler(t *testing.T) {
	provider := &testConfigProvider{
		version:  "1.2.0",
		apiURL:   "https://api.weather.gov/",
		stations: []string{"KBOS", "KSFO"},
		timeout:  5 * time.Second,
		otel:     true,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()

	handler := ConfigHandler(provider)
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response ConfigResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}

	if response.Version != "1.2.0" {
		t.Errorf("Expected version 1.2.0, got %s", response.Version)
	}

	if response.APIURL != "https://api.weather.gov/" {
		t.Errorf("Unexpected API URL: %s", response.APIURL)
	}

	if !reflect.DeepEqual(response.Stations, []string{"KBOS", "KSFO"}) {
		t.Errorf("Unexpected stations: %v", response.Stations)
	}

	if response.RequestTimeout != "5s" {
		t.Errorf("Expected request timeout 5s, got %s", response.RequestTimeout)
	}

	if !response.OTELMetricsEnabled {
		t.Error("Expected OTEL metrics enabled")
	}
}

func TestRegisterConfigHandler(t *testing.T) {
	mux := http.NewServeMux()
	RegisterConfigHandler(mux, &testConfigProvider{version: "dev", timeout: time.Second})

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
