package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// conservativePlanNote marks runs where no full mitigation plan was
// generated because critical information was missing.
const conservativePlanNote = "(Conservative path - full mitigation plan not generated due to missing critical information)"

// ConservativeSummaryNode produces a faithful summary restricted to what
// the report explicitly states. It runs when critical information is
// missing.
type ConservativeSummaryNode struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewConservativeSummaryNode(gen genai.Generator, logger *zap.Logger) *ConservativeSummaryNode {
	return &ConservativeSummaryNode{gen: gen, logger: logger}
}

func (n *ConservativeSummaryNode) Name() string { return "conservative_summary" }

func (n *ConservativeSummaryNode) Run(ctx context.Context, state *State) {
	task := "Please provide a conservative summary of this incident report. Critical information is missing:\n\n" + state.IncidentReport

	summary, err := n.gen.Generate(ctx, agentMessages(conservativeSummaryPrompt, conservativeSummaryAck, task), genai.GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 300,
	})
	if err != nil {
		n.logger.Error("conservative summary failed", zap.Error(err))
		recordError(state, "conservative summary", err)
		state.Summary = "Error generating conservative summary: " + err.Error()
		return
	}

	state.Summary = summary
	n.logger.Info("conservative summary generated", zap.Int("chars", len(summary)))
}

// ConservativeNextStepsNode produces precautionary recommendations and
// assembles the conservative path's final response.
type ConservativeNextStepsNode struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewConservativeNextStepsNode(gen genai.Generator, logger *zap.Logger) *ConservativeNextStepsNode {
	return &ConservativeNextStepsNode{gen: gen, logger: logger}
}

func (n *ConservativeNextStepsNode) Name() string { return "conservative_nextsteps" }

func (n *ConservativeNextStepsNode) Run(ctx context.Context, state *State) {
	task := fmt.Sprintf(`Please provide conservative next steps for this incident.

**Current Summary:**
%s

**Missing Information:**
- Timeline: %s
- Impact Assessment: %s

Provide VERY CONSERVATIVE recommendations focusing on information gathering and basic precautionary measures.`,
		state.Summary,
		availability(state.When),
		availability(state.Impact),
	)

	nextSteps, err := n.gen.Generate(ctx, agentMessages(conservativeNextStepsPrompt, conservativeNextStepsAck, task), genai.GenerateOptions{
		Temperature:     0.4,
		MaxOutputTokens: 500,
	})
	if err != nil {
		n.logger.Error("conservative next steps failed", zap.Error(err))
		recordError(state, "conservative next steps", err)
		state.FinalResponse = "Error generating conservative next steps: " + err.Error()
		return
	}

	state.FinalResponse = fmt.Sprintf(`## Incident Summary (Limited Information Available)

%s

---

## Conservative Next Steps

⚠️ **Note:** Critical information is missing from this report. Full mitigation planning requires complete information about timeline and/or impact.

%s`, state.Summary, nextSteps)

	state.MitigationPlan = conservativePlanNote

	n.logger.Info("conservative next steps generated", zap.Int("chars", len(nextSteps)))
}

func availability(value string) string {
	if fieldMissing(value) {
		return "Missing"
	}
	return "Available"
}
