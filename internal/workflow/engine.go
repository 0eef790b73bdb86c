package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// Engine walks an incident report through the analysis pipeline:
//
//	validate -> route -> conservative_summary -> conservative_nextsteps
//	                  \> summarize -> retrieve -> mitigate
//
// The branch is chosen by the completeness of the extracted standard
// information. Every run ends with a populated final response; node
// failures degrade the output rather than aborting.
type Engine struct {
	validate              Node
	route                 Node
	conservativeSummary   Node
	conservativeNextSteps Node
	summarize             Node
	retrieve              Node
	mitigate              Node

	logger *zap.Logger
}

// NewEngine assembles the pipeline from its collaborators. topK bounds how
// many similar incidents retrieval surfaces.
func NewEngine(gen genai.Generator, embedder QueryEmbedder, searcher Searcher, topK int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		validate:              NewValidateNode(gen, logger),
		route:                 NewRouteNode(logger),
		conservativeSummary:   NewConservativeSummaryNode(gen, logger),
		conservativeNextSteps: NewConservativeNextStepsNode(gen, logger),
		summarize:             NewSummarizeNode(gen, logger),
		retrieve:              NewRetrieveNode(embedder, searcher, topK, logger),
		mitigate:              NewMitigateNode(gen, logger),
		logger:                logger,
	}
}

// Run processes one incident report and returns the analysis result.
func (e *Engine) Run(ctx context.Context, incidentReport string) Result {
	state := NewState(incidentReport)

	e.step(ctx, e.validate, state)
	e.step(ctx, e.route, state)

	switch routeByCompleteness(state) {
	case PathConservative:
		e.step(ctx, e.conservativeSummary, state)
		e.step(ctx, e.conservativeNextSteps, state)
	case PathFull:
		e.step(ctx, e.summarize, state)
		e.step(ctx, e.retrieve, state)
		e.step(ctx, e.mitigate, state)
	}

	return buildResult(state)
}

func (e *Engine) step(ctx context.Context, node Node, state *State) {
	e.logger.Debug("running node", zap.String("node", node.Name()))
	node.Run(ctx, state)
}
