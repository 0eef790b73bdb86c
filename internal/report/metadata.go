package report

import (
	"regexp"
	"strings"
)

// Metadata field patterns. Each field is independently optional; a field
// that does not match is omitted from the result, never set to a
// placeholder.
var (
	incidentIDPattern = regexp.MustCompile(`(?i)Incident ID:\s*([A-Z0-9-]+)`)
	datePattern       = regexp.MustCompile(`(?i)Date of Detection:\s*([0-9]{4}-[0-9]{2}-[0-9]{2}(?:\s+[0-9]{2}:[0-9]{2})?(?:\s+UTC)?)`)
	yearPattern       = regexp.MustCompile(`([0-9]{4})`)
	monthPattern      = regexp.MustCompile(`[0-9]{4}-([0-9]{2})`)
	vehicleIDPattern  = regexp.MustCompile(`(?i)Vehicle ID:\s*([A-Z0-9/-]+)(?:\s*\(([^)]+)\))?`)
	fleetPattern      = regexp.MustCompile(`(?i)Fleet:\s*["']([^"']+)["']`)
	threatPattern     = regexp.MustCompile(`(?i)Threat Category:\s*([^.\n]+)`)
	detectionPattern  = regexp.MustCompile(`(?i)Detection Method:\s*([^.\n]+)`)
	severityPattern   = regexp.MustCompile(`(?i)Severity:\s*([^.\n]+)`)
	statusPattern     = regexp.MustCompile(`(?i)Status:\s*([^.\n]+)`)
)

// ExtractMetadata extracts structured metadata fields from report text.
//
// The result always contains "source" and "file_name"; every other key is
// present only when its pattern matched. Extraction is deterministic: the
// same text always yields the same map.
func ExtractMetadata(text, fileName string) map[string]string {
	metadata := map[string]string{
		"source":    "incident_report",
		"file_name": fileName,
	}

	if m := incidentIDPattern.FindStringSubmatch(text); m != nil {
		metadata["incident_id"] = strings.TrimSpace(m[1])
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		date := strings.TrimSpace(m[1])
		metadata["date_of_detection"] = date
		if y := yearPattern.FindStringSubmatch(date); y != nil {
			metadata["year"] = y[1]
		}
		if mo := monthPattern.FindStringSubmatch(date); mo != nil {
			metadata["month"] = mo[1]
		}
	}

	if m := vehicleIDPattern.FindStringSubmatch(text); m != nil {
		metadata["vehicle_id"] = strings.TrimSpace(m[1])
		if m[2] != "" {
			metadata["vehicle_id_note"] = strings.TrimSpace(m[2])
		}
	}

	if m := fleetPattern.FindStringSubmatch(text); m != nil {
		metadata["fleet"] = strings.TrimSpace(m[1])
	}

	if m := threatPattern.FindStringSubmatch(text); m != nil {
		metadata["threat_category"] = cleanValue(cutAtLabels(m[1], "Detection Method:", "Severity:"))
	}

	if m := detectionPattern.FindStringSubmatch(text); m != nil {
		metadata["detection_method"] = cleanValue(cutAtLabels(m[1], "Severity:", "Status:"))
	}

	if m := severityPattern.FindStringSubmatch(text); m != nil {
		metadata["severity"] = cleanValue(m[1])
	}

	if m := statusPattern.FindStringSubmatch(text); m != nil {
		metadata["status"] = cleanValue(m[1])
	}

	return metadata
}

// cleanValue strips surrounding whitespace and trailing punctuation from a
// free-text field value.
func cleanValue(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), ".,;:")
}

// cutAtLabels truncates a captured value at the first occurrence of any of
// the given known labels. Inline metadata lines often run several labeled
// fields together on one line; the capture pattern alone cannot stop at the
// next label because RE2 has no lookahead.
func cutAtLabels(value string, labels ...string) string {
	lower := strings.ToLower(value)
	cut := len(value)
	for _, label := range labels {
		if idx := strings.Index(lower, strings.ToLower(label)); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return value[:cut]
}
