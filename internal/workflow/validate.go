package workflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// descriptionLimit caps the fallback retrieval query taken from the raw
// report when no WHAT field was extracted.
const descriptionLimit = 500

// ValidateNode extracts the standard information fields from the report and
// decides whether critical information is missing.
type ValidateNode struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewValidateNode(gen genai.Generator, logger *zap.Logger) *ValidateNode {
	return &ValidateNode{gen: gen, logger: logger}
}

func (n *ValidateNode) Name() string { return "validate" }

func (n *ValidateNode) Run(ctx context.Context, state *State) {
	task := "Please extract the standard information from this incident report:\n\n" + state.IncidentReport

	response, err := n.gen.Generate(ctx, agentMessages(validationPrompt, validationAck, task), genai.GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 500,
	})
	if err != nil {
		n.logger.Error("validation failed", zap.Error(err))
		recordError(state, "validation", err)
		n.setDefaults(state)
		return
	}

	parseStandardFields(state, strings.TrimSpace(response))

	state.CriticalInfoMissing = fieldMissing(state.When) || fieldMissing(state.Impact)

	if state.What != "Unknown" {
		state.Description = state.What
	} else {
		state.Description = truncateRunes(state.IncidentReport, descriptionLimit)
	}

	n.logger.Info("extracted standard information",
		zap.String("who", state.Who),
		zap.String("what", state.What),
		zap.String("when", state.When),
		zap.String("impact", state.Impact),
		zap.String("status", state.Status),
		zap.Bool("critical_info_missing", state.CriticalInfoMissing),
	)
}

// setDefaults fills the degraded values used when extraction fails. The
// conservative path is forced so the run never pretends to completeness it
// could not verify.
func (n *ValidateNode) setDefaults(state *State) {
	state.Who = "Unknown"
	state.What = "Unknown"
	state.Where = "Unknown"
	state.When = "Unknown"
	state.Impact = "Unknown"
	state.Status = "Unknown"
	state.CriticalInfoMissing = true
	state.Description = truncateRunes(state.IncidentReport, descriptionLimit)
}

// parseStandardFields reads the labeled-line response format. Each field's
// value runs from its label to the next expected label, a blank line, or the
// end of the response. Absent labels yield "Unknown".
func parseStandardFields(state *State, response string) {
	state.Who = extractField(response, "WHO", "\nWHAT:", "\nWHERE:")
	state.What = extractField(response, "WHAT", "\nWHERE:", "\nWHEN:")
	state.Where = extractField(response, "WHERE", "\nWHEN:", "\nIMPACT:")
	state.When = extractField(response, "WHEN", "\nIMPACT:", "\nSTATUS:")
	state.Impact = extractField(response, "IMPACT", "\nSTATUS:")
	state.Status = extractField(response, "STATUS")
}

func extractField(response, label string, stops ...string) string {
	idx := strings.Index(response, label+":")
	if idx < 0 {
		return "Unknown"
	}
	start := idx + len(label) + 1

	rest := response[start:]
	end := len(rest)
	for _, stop := range append(stops, "\n\n") {
		if i := strings.Index(rest, stop); i >= 0 && i < end {
			end = i
		}
	}

	value := strings.TrimSpace(rest[:end])
	if value == "" {
		return "Unknown"
	}
	return value
}
