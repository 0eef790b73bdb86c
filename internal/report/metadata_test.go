package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `Incident ID: AV-2024-0042
Date of Detection: 2024-01-15 14:32 UTC
Vehicle ID: AV-TX-117 (decommissioned)
Fleet: "Austin Ride Network"
Threat Category: CAN Bus Injection Detection Method: Anomaly-based IDS. Severity: High.
Status: Contained.

Detailed Incident Description:
Flood of forged brake-control frames on the powertrain CAN segment.

Impact Assessment:
Multiple ECUs entered limp mode; two vehicles pulled over safely.

Response and Forensic Analysis:
Affected vehicles isolated; bus logs captured for forensics.

Lessons Learned:
Enforce message authentication on safety-critical CAN IDs.
`

func TestExtractMetadata(t *testing.T) {
	got := ExtractMetadata(sampleReport, "av-2024-0042.txt")

	want := map[string]string{
		"source":            "incident_report",
		"file_name":         "av-2024-0042.txt",
		"incident_id":       "AV-2024-0042",
		"date_of_detection": "2024-01-15 14:32 UTC",
		"year":              "2024",
		"month":             "01",
		"vehicle_id":        "AV-TX-117",
		"vehicle_id_note":   "decommissioned",
		"fleet":             "Austin Ride Network",
		"threat_category":   "CAN Bus Injection",
		"detection_method":  "Anomaly-based IDS",
		"severity":          "High",
		"status":            "Contained",
	}
	assert.Equal(t, want, got)
}

func TestExtractMetadataIdempotent(t *testing.T) {
	first := ExtractMetadata(sampleReport, "r.txt")
	second := ExtractMetadata(sampleReport, "r.txt")
	assert.Equal(t, first, second)
}

func TestExtractMetadataAbsentFieldsOmitted(t *testing.T) {
	got := ExtractMetadata("Just some prose with no labeled fields.", "note.txt")

	require.Equal(t, "incident_report", got["source"])
	require.Equal(t, "note.txt", got["file_name"])
	assert.Len(t, got, 2, "absent fields must be omitted, not set to placeholders")

	_, hasDate := got["date_of_detection"]
	assert.False(t, hasDate)
	_, hasYear := got["year"]
	assert.False(t, hasYear, "derived fields require the date field itself")
}

func TestExtractMetadataDateVariants(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantDate  string
		wantYear  string
		wantMonth string
	}{
		{
			name:      "date only",
			line:      "Date of Detection: 2023-11-02",
			wantDate:  "2023-11-02",
			wantYear:  "2023",
			wantMonth: "11",
		},
		{
			name:      "date and time",
			line:      "Date of Detection: 2023-11-02 09:15",
			wantDate:  "2023-11-02 09:15",
			wantYear:  "2023",
			wantMonth: "11",
		},
		{
			name:      "date time and UTC marker",
			line:      "Date of Detection: 2023-11-02 09:15 UTC",
			wantDate:  "2023-11-02 09:15 UTC",
			wantYear:  "2023",
			wantMonth: "11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMetadata(tt.line, "f.txt")
			assert.Equal(t, tt.wantDate, got["date_of_detection"])
			assert.Equal(t, tt.wantYear, got["year"])
			assert.Equal(t, tt.wantMonth, got["month"])
		})
	}
}

func TestExtractMetadataTrailingPunctuationStripped(t *testing.T) {
	got := ExtractMetadata("Severity: Critical;\nStatus: Under investigation,", "f.txt")
	assert.Equal(t, "Critical", got["severity"])
	assert.Equal(t, "Under investigation", got["status"])
}

func TestExtractMetadataVehicleWithoutNote(t *testing.T) {
	got := ExtractMetadata("Vehicle ID: AV-CA-009", "f.txt")
	assert.Equal(t, "AV-CA-009", got["vehicle_id"])
	_, hasNote := got["vehicle_id_note"]
	assert.False(t, hasNote)
}
