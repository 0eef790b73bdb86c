package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStandardFields(t *testing.T) {
	state := &State{}
	parseStandardFields(state, `WHO: Vehicle AV-PAX-117 and an unknown external attacker
WHAT: GPS spoofing attack causing lane misjudgment
WHERE: Downtown service area, GNSS subsystem
WHEN: 2024-03-15 14:22 UTC
IMPACT: Passenger pickup delayed by 18 minutes, no injuries
STATUS: Resolved`)

	assert.Equal(t, "Vehicle AV-PAX-117 and an unknown external attacker", state.Who)
	assert.Equal(t, "GPS spoofing attack causing lane misjudgment", state.What)
	assert.Equal(t, "Downtown service area, GNSS subsystem", state.Where)
	assert.Equal(t, "2024-03-15 14:22 UTC", state.When)
	assert.Equal(t, "Passenger pickup delayed by 18 minutes, no injuries", state.Impact)
	assert.Equal(t, "Resolved", state.Status)
}

func TestParseStandardFieldsMissingLabels(t *testing.T) {
	state := &State{}
	parseStandardFields(state, `WHAT: Something happened
STATUS: Ongoing`)

	assert.Equal(t, "Unknown", state.Who)
	assert.Equal(t, "Something happened", state.What)
	assert.Equal(t, "Unknown", state.Where)
	assert.Equal(t, "Unknown", state.When)
	assert.Equal(t, "Unknown", state.Impact)
	assert.Equal(t, "Ongoing", state.Status)
}

func TestParseStandardFieldsStopsAtBlankLine(t *testing.T) {
	state := &State{}
	parseStandardFields(state, "WHO: The fleet operator\nWHAT: CAN bus flooding\nWHERE: Vehicle network\nWHEN: Last Tuesday\nIMPACT: Braking latency\nSTATUS: Contained\n\nAdditional commentary that is not part of any field.")

	assert.Equal(t, "Contained", state.Status)
}

func TestExtractFieldTrimsWhitespace(t *testing.T) {
	assert.Equal(t, "value", extractField("WHO:   value  \nWHAT: other", "WHO", "\nWHAT:"))
	assert.Equal(t, "Unknown", extractField("WHO:\nWHAT: other", "WHO", "\nWHAT:"))
}

func TestFieldMissing(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Unknown", true},
		{"unknown", true},
		{"Not specified", true},
		{"NOT SPECIFIED", true},
		{"", true},
		{"  ", true},
		{"2024-03-15 14:22 UTC", false},
		{"Minor delay", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldMissing(tt.value))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	assert.Equal(t, "hél", truncateRunes("héllo", 3))
}
