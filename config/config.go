// Package config provides configuration loading for the exporter.
// It supports loading from properties/INI files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"gopkg.in/ini.v1"
)

// Config holds all configuration options for the exporter.
type Config struct {
	// Stations lists the identifiers of the observation stations to export.
	Stations []string
	Port     string
	// APIURL overrides the upstream API base URL, mainly for testing.
	APIURL    string
	UserAgent string
	// RequestTimeout bounds each upstream request and the collection as a
	// whole. The upstream API expects callers to stay well under a minute.
	RequestTimeout time.Duration
	DataDir        string
	DebugEnabled   bool

	OTELMetricsEnabled      bool
	OTELMetricsEndpoint     string
	OTELMetricsProtocol     string
	OTELMetricsPushInterval time.Duration
	OTELMetricsInsecure     bool
}

// defaultConfig returns a Config with hardcoded defaults.
func defaultConfig() *Config {
	return &Config{
		Port:                    "9782",
		APIURL:                  "https://api.weather.gov/",
		UserAgent:               "nws-exporter (+https://github.com/wxgauge/nws-exporter)",
		RequestTimeout:          5 * time.Second,
		DataDir:                 "/var/lib/nws-exporter",
		DebugEnabled:            false,
		OTELMetricsEndpoint:     "localhost:4317",
		OTELMetricsProtocol:     "grpc",
		OTELMetricsPushInterval: 60 * time.Second,
	}
}

// LoadConfig loads configuration from the specified file path.
// Environment variables override file values.
// Precedence: environment variables > config file > defaults
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	// Try to load config file
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			iniFile, err := ini.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}

			section := iniFile.Section("")

			if section.HasKey("stations") {
				cfg.Stations = parseStations(section.Key("stations").String())
			}

			if section.HasKey("port") {
				cfg.Port = section.Key("port").String()
			}

			if section.HasKey("api_url") {
				cfg.APIURL = section.Key("api_url").String()
			}

			if section.HasKey("user_agent") {
				cfg.UserAgent = section.Key("user_agent").String()
			}

			if section.HasKey("request_timeout") {
				timeout, err := time.ParseDuration(section.Key("request_timeout").String())
				if err != nil {
					return nil, fmt.Errorf("invalid request_timeout in %s: %w", path, err)
				}
				cfg.RequestTimeout = timeout
			}

			if section.HasKey("data_dir") {
				cfg.DataDir = section.Key("data_dir").String()
			}

			if section.HasKey("debug_enabled") {
				cfg.DebugEnabled = parseBool(section.Key("debug_enabled").String())
			}

			if section.HasKey("otel_metrics_enabled") {
				cfg.OTELMetricsEnabled = parseBool(section.Key("otel_metrics_enabled").String())
			}

			if section.HasKey("otel_metrics_endpoint") {
				cfg.OTELMetricsEndpoint = section.Key("otel_metrics_endpoint").String()
			}

			if section.HasKey("otel_metrics_protocol") {
				cfg.OTELMetricsProtocol = section.Key("otel_metrics_protocol").String()
			}

			if section.HasKey("otel_metrics_push_interval") {
				interval, err := time.ParseDuration(section.Key("otel_metrics_push_interval").String())
				if err != nil {
					return nil, fmt.Errorf("invalid otel_metrics_push_interval in %s: %w", path, err)
				}
				cfg.OTELMetricsPushInterval = interval
			}

			if section.HasKey("otel_metrics_insecure") {
				cfg.OTELMetricsInsecure = parseBool(section.Key("otel_metrics_insecure").String())
			}
		} else if !os.IsNotExist(err) {
			// File exists but can't be read
			return nil, fmt.Errorf("cannot access config file %s: %w", path, err)
		}
		// If file doesn't exist, just use defaults (no error)
	}

	// Override with environment variables
	if stationsEnv := os.Getenv("STATIONS"); stationsEnv != "" {
		cfg.Stations = parseStations(stationsEnv)
	}

	if portEnv := os.Getenv("PORT"); portEnv != "" {
		cfg.Port = portEnv
	}

	if apiURLEnv := os.Getenv("API_URL"); apiURLEnv != "" {
		cfg.APIURL = apiURLEnv
	}

	if userAgentEnv := os.Getenv("USER_AGENT"); userAgentEnv != "" {
		cfg.UserAgent = userAgentEnv
	}

	if timeoutEnv := os.Getenv("REQUEST_TIMEOUT"); timeoutEnv != "" {
		timeout, err := time.ParseDuration(timeoutEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = timeout
	}

	if dataDirEnv := os.Getenv("DATA_DIR"); dataDirEnv != "" {
		cfg.DataDir = dataDirEnv
	}

	if debugEnv := os.Getenv("DEBUG_ENABLED"); debugEnv != "" {
		cfg.DebugEnabled = parseBool(debugEnv)
	}

	if otelEnabledEnv := os.Getenv("OTEL_METRICS_ENABLED"); otelEnabledEnv != "" {
		cfg.OTELMetricsEnabled = parseBool(otelEnabledEnv)
	}

	if otelEndpointEnv := os.Getenv("OTEL_METRICS_ENDPOINT"); otelEndpointEnv != "" {
		cfg.OTELMetricsEndpoint = otelEndpointEnv
	}

	if otelProtocolEnv := os.Getenv("OTEL_METRICS_PROTOCOL"); otelProtocolEnv != "" {
		cfg.OTELMetricsProtocol = otelProtocolEnv
	}

	if otelIntervalEnv := os.Getenv("OTEL_METRICS_PUSH_INTERVAL"); otelIntervalEnv != "" {
		interval, err := time.ParseDuration(otelIntervalEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid OTEL_METRICS_PUSH_INTERVAL: %w", err)
		}
		cfg.OTELMetricsPushInterval = interval
	}

	if otelInsecureEnv := os.Getenv("OTEL_METRICS_INSECURE"); otelInsecureEnv != "" {
		cfg.OTELMetricsInsecure = parseBool(otelInsecureEnv)
	}

	return cfg, nil
}

// LoadConfigWithDefaults tries to load configuration from default locations.
// It checks locations in order:
// 1. /etc/nws-exporter/exporter.conf
// 2. ./exporter.conf (current directory)
// 3. Hardcoded defaults
//
// Environment variables override file values.
func LoadConfigWithDefaults() (*Config, error) {
	// Check default locations in order
	defaultPaths := []string{
		"/etc/nws-exporter/exporter.conf",
		"./exporter.conf",
	}

	for _, path := range defaultPaths {
		if _, err := os.Stat(path); err == nil {
			// File exists, try to load it
			cfg, err := LoadConfig(path)
			if err != nil {
				// File exists but failed to parse - return error
				return nil, err
			}
			return cfg, nil
		}
	}

	// No config file found, use defaults with env var overrides
	return LoadConfig("")
}

// parseStations splits a station list on commas and whitespace, dropping
// empty entries.
func parseStations(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func parseBool(value string) bool {
	v := strings.ToLower(value)
	return v == "true" || v == "1" || v == "yes"
}
