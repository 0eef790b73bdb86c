package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// maxExemplars bounds how many retrieved incidents are quoted to the model
// as worked examples.
const maxExemplars = 3

// MitigateNode generates the mitigation plan from the summary and the
// retrieved historical incidents, and assembles the full path's final
// response.
type MitigateNode struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewMitigateNode(gen genai.Generator, logger *zap.Logger) *MitigateNode {
	return &MitigateNode{gen: gen, logger: logger}
}

func (n *MitigateNode) Name() string { return "mitigate" }

func (n *MitigateNode) Run(ctx context.Context, state *State) {
	task := fmt.Sprintf(`Please generate a mitigation plan for this incident.

**CURRENT INCIDENT SUMMARY:**
%s

**FEW-SHOT EXAMPLES FROM SIMILAR HISTORICAL INCIDENTS:**
Below are examples of similar incidents and how they were mitigated. Use these as reference to create a comprehensive mitigation plan for the current incident.

%s

Based on the current incident summary and the few-shot examples above, please provide a comprehensive mitigation plan.`,
		state.Summary,
		fewShotExamples(state.RetrievedIncidents),
	)

	plan, err := n.gen.Generate(ctx, agentMessages(mitigationPrompt, mitigationAck, task), genai.GenerateOptions{
		Temperature:     0.7,
		MaxOutputTokens: 1000,
	})
	if err != nil {
		n.logger.Error("mitigation failed", zap.Error(err))
		recordError(state, "mitigation", err)
		state.FinalResponse = "Error generating mitigation plan: " + err.Error()
		return
	}

	state.MitigationPlan = plan
	state.FinalResponse = fmt.Sprintf(`## Incident Summary

%s

---

## Mitigation Plan

%s%s`, state.Summary, plan, provenance(state.RetrievedIncidents))

	n.logger.Info("mitigation plan generated", zap.Int("chars", len(plan)))
}

// fewShotExamples renders up to maxExemplars retrieved incidents as worked
// examples, or a placeholder when retrieval came back empty.
func fewShotExamples(incidents []RetrievedIncident) string {
	if len(incidents) == 0 {
		return "No similar historical incidents available."
	}
	if len(incidents) > maxExemplars {
		incidents = incidents[:maxExemplars]
	}

	examples := make([]string, len(incidents))
	for i, incident := range incidents {
		examples[i] = fmt.Sprintf(`### Example %d: %s (%s)
**Incident Description:**
%s

**Mitigation Strategy:**
%s`,
			i+1,
			incident.IncidentID,
			metadataString(incident.Metadata, "threat_category", "Unknown"),
			incident.Description,
			incident.Recommendations,
		)
	}
	return strings.Join(examples, "\n\n")
}

// provenance renders the analysis context footer crediting the historical
// incidents the plan draws on. Empty when there were none.
func provenance(incidents []RetrievedIncident) string {
	if len(incidents) == 0 {
		return ""
	}
	shown := incidents
	if len(shown) > maxExemplars {
		shown = shown[:maxExemplars]
	}

	lines := make([]string, len(shown))
	for i, incident := range shown {
		lines[i] = fmt.Sprintf("- **%s**: %s (Similarity: %.2f)",
			incident.IncidentID,
			metadataString(incident.Metadata, "threat_category", "N/A"),
			incident.Score,
		)
	}

	return fmt.Sprintf(`

---
**Analysis Context**
Mitigation plan based on %d similar historical incident(s):
%s`, len(incidents), strings.Join(lines, "\n"))
}
