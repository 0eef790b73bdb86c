package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/vectorstore"
)

// descriptionNamespace is where per-incident description sections live in
// the vector store.
const descriptionNamespace = "description"

// QueryEmbedder produces a query-mode embedding for a search string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs a similarity query against one namespace.
type Searcher interface {
	Query(ctx context.Context, vector []float32, topK int, namespace string, filter map[string]any, includeMetadata bool) ([]vectorstore.Match, error)
}

// RetrieveNode finds similar historical incidents by searching the
// description namespace with the extracted incident description.
type RetrieveNode struct {
	embedder QueryEmbedder
	searcher Searcher
	topK     int
	logger   *zap.Logger
}

func NewRetrieveNode(embedder QueryEmbedder, searcher Searcher, topK int, logger *zap.Logger) *RetrieveNode {
	if topK <= 0 {
		topK = 3
	}
	return &RetrieveNode{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

func (n *RetrieveNode) Name() string { return "retrieve" }

func (n *RetrieveNode) Run(ctx context.Context, state *State) {
	vector, err := n.embedder.EmbedQuery(ctx, state.Description)
	if err != nil {
		n.degrade(state, err)
		return
	}

	matches, err := n.searcher.Query(ctx, vector, n.topK, descriptionNamespace, nil, true)
	if err != nil {
		n.degrade(state, err)
		return
	}

	// Deduplicate by incident id, keeping the best-scoring match. Results
	// arrive ranked, so first wins.
	state.RetrievedIncidents = make([]RetrievedIncident, 0, len(matches))
	state.RetrievedRecommendations = make([]string, 0, len(matches))
	seen := make(map[string]bool)

	for _, match := range matches {
		incidentID := metadataString(match.Metadata, "incident_id", "Unknown")
		if seen[incidentID] {
			continue
		}
		seen[incidentID] = true

		incident := RetrievedIncident{
			IncidentID:      incidentID,
			Description:     metadataString(match.Metadata, "text", ""),
			Recommendations: metadataString(match.Metadata, "section_recommendations_text", ""),
			Metadata:        match.Metadata,
			Score:           match.Score,
		}
		state.RetrievedIncidents = append(state.RetrievedIncidents, incident)
		if incident.Recommendations != "" {
			state.RetrievedRecommendations = append(state.RetrievedRecommendations, incident.Recommendations)
		}
	}

	n.logger.Info("retrieved similar incidents",
		zap.Int("matches", len(matches)),
		zap.Int("incidents", len(state.RetrievedIncidents)),
		zap.Int("recommendations", len(state.RetrievedRecommendations)),
	)
	for _, incident := range state.RetrievedIncidents {
		n.logger.Debug("similar incident",
			zap.String("incident_id", incident.IncidentID),
			zap.Float32("score", incident.Score),
			zap.String("threat_category", metadataString(incident.Metadata, "threat_category", "N/A")),
		)
	}
}

// degrade leaves mitigation to proceed without historical context.
func (n *RetrieveNode) degrade(state *State, err error) {
	n.logger.Error("retrieval failed", zap.Error(err))
	recordError(state, "retrieval", err)
	state.RetrievedIncidents = []RetrievedIncident{}
	state.RetrievedRecommendations = []string{}
}

func metadataString(metadata map[string]any, key, fallback string) string {
	if s, ok := metadata[key].(string); ok && s != "" {
		return s
	}
	return fallback
}
