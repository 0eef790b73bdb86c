package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// SummarizeNode produces the executive summary on the full path.
type SummarizeNode struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewSummarizeNode(gen genai.Generator, logger *zap.Logger) *SummarizeNode {
	return &SummarizeNode{gen: gen, logger: logger}
}

func (n *SummarizeNode) Name() string { return "summarize" }

func (n *SummarizeNode) Run(ctx context.Context, state *State) {
	task := "Please provide a summary of this incident report:\n\n" + state.IncidentReport

	summary, err := n.gen.Generate(ctx, agentMessages(summarizationPrompt, summarizationAck, task), genai.GenerateOptions{
		Temperature:     0.5,
		MaxOutputTokens: 300,
	})
	if err != nil {
		n.logger.Error("summarization failed", zap.Error(err))
		recordError(state, "summarization", err)
		state.Summary = "Error generating summary: " + err.Error()
		return
	}

	state.Summary = summary
	n.logger.Info("summary generated", zap.Int("chars", len(summary)))
}
