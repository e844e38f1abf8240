package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FormatPrometheus converts structured metrics data to Prometheus text format.
// Families without any points are skipped entirely so that an absent
// observation field produces no output at all, not a zero sample.
func FormatPrometheus(data *MetricsData) string {
	var output strings.Builder

	for _, family := range data.Families {
		if len(family.Metrics) == 0 {
			continue
		}

		// Write HELP line
		output.WriteString(fmt.Sprintf("# HELP %s %s\n", family.Name, escapeHelp(family.Help)))
		// Write TYPE line
		output.WriteString(fmt.Sprintf("# TYPE %s %s\n", family.Name, family.Type))

		// Write each metric
		for _, metric := range family.Metrics {
			// Format labels
			labels := formatLabels(metric.Labels)
			output.WriteString(fmt.Sprintf("%s{%s} %s\n", family.Name, labels, formatValue(metric.Value)))
		}
	}

	return output.String()
}

// formatValue renders a sample value as the shortest decimal that
// round-trips. Inf and NaN use the spellings the exposition format expects.
func formatValue(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "+Inf"
	case math.IsInf(value, -1):
		return "-Inf"
	case math.IsNaN(value):
		return "NaN"
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// formatLabels converts a label map to Prometheus label string format
// Labels are sorted alphabetically for consistent output
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	// Sort label keys for consistent output
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Build label string
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := escapeLabelValue(labels[k])
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, v))
	}

	return strings.Join(parts, ",")
}

// escapeLabelValue escapes special characters in Prometheus label values
func escapeLabelValue(value string) string {
	// Escape backslash, newline, and double quote
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// escapeHelp escapes special characters in help text
func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
