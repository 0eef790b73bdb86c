package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/vectorstore"
)

func TestRetrieveDeduplicatesByIncidentID(t *testing.T) {
	searcher := &fakeSearcher{matches: []vectorstore.Match{
		historicalMatch("AV-2023-0011", "First event.", "Fix A.", 0.95),
		historicalMatch("AV-2023-0011", "Duplicate point.", "Fix A again.", 0.90),
		historicalMatch("AV-2023-0027", "Second event.", "Fix B.", 0.85),
	}}

	node := NewRetrieveNode(&fakeQueryEmbedder{}, searcher, 3, zap.NewNop())
	state := &State{Description: "spoofing"}
	node.Run(context.Background(), state)

	require.Len(t, state.RetrievedIncidents, 2)
	assert.Equal(t, "AV-2023-0011", state.RetrievedIncidents[0].IncidentID)
	assert.Equal(t, "First event.", state.RetrievedIncidents[0].Description, "best-scoring match wins")
	assert.Equal(t, "AV-2023-0027", state.RetrievedIncidents[1].IncidentID)
	assert.Equal(t, []string{"Fix A.", "Fix B."}, state.RetrievedRecommendations)
}

func TestRetrieveSkipsEmptyRecommendations(t *testing.T) {
	match := historicalMatch("AV-2023-0031", "Event.", "", 0.8)
	searcher := &fakeSearcher{matches: []vectorstore.Match{match}}

	node := NewRetrieveNode(&fakeQueryEmbedder{}, searcher, 3, zap.NewNop())
	state := &State{Description: "query"}
	node.Run(context.Background(), state)

	require.Len(t, state.RetrievedIncidents, 1)
	assert.Empty(t, state.RetrievedRecommendations)
}

func TestRetrieveMissingIncidentID(t *testing.T) {
	searcher := &fakeSearcher{matches: []vectorstore.Match{
		{ID: "p1", Score: 0.7, Metadata: map[string]any{"text": "orphan record"}},
	}}

	node := NewRetrieveNode(&fakeQueryEmbedder{}, searcher, 3, zap.NewNop())
	state := &State{Description: "query"}
	node.Run(context.Background(), state)

	require.Len(t, state.RetrievedIncidents, 1)
	assert.Equal(t, "Unknown", state.RetrievedIncidents[0].IncidentID)
}

func TestFewShotExamplesCappedAtThree(t *testing.T) {
	incidents := []RetrievedIncident{
		{IncidentID: "A"}, {IncidentID: "B"}, {IncidentID: "C"}, {IncidentID: "D"},
	}

	examples := fewShotExamples(incidents)
	assert.Contains(t, examples, "### Example 3: C")
	assert.NotContains(t, examples, "D")
}

func TestFewShotExamplesEmpty(t *testing.T) {
	assert.Equal(t, "No similar historical incidents available.", fewShotExamples(nil))
}

func TestProvenanceFooter(t *testing.T) {
	incidents := []RetrievedIncident{
		{IncidentID: "AV-2023-0011", Score: 0.912, Metadata: map[string]any{"threat_category": "GPS Spoofing"}},
	}

	footer := provenance(incidents)
	assert.Contains(t, footer, "**Analysis Context**")
	assert.Contains(t, footer, "1 similar historical incident(s)")
	assert.Contains(t, footer, "- **AV-2023-0011**: GPS Spoofing (Similarity: 0.91)")

	assert.Empty(t, provenance(nil))
}
