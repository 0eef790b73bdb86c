package workflow

import (
	"context"

	"go.uber.org/zap"
)

// Path names the branch selected after validation.
type Path string

const (
	// PathConservative limits output to a faithful summary and
	// precautionary next steps.
	PathConservative Path = "conservative"

	// PathFull produces an executive summary, retrieves similar
	// historical incidents, and generates a mitigation plan.
	PathFull Path = "full"
)

// RouteNode inspects the completeness flag and records the branch decision.
// The branch itself is taken by the engine.
type RouteNode struct {
	logger *zap.Logger
}

func NewRouteNode(logger *zap.Logger) *RouteNode {
	return &RouteNode{logger: logger}
}

func (n *RouteNode) Name() string { return "route" }

func (n *RouteNode) Run(_ context.Context, state *State) {
	n.logger.Info("routing decision",
		zap.Bool("critical_info_missing", state.CriticalInfoMissing),
		zap.String("path", string(routeByCompleteness(state))),
	)
}

// routeByCompleteness selects the branch from the completeness flag.
func routeByCompleteness(state *State) Path {
	if state.CriticalInfoMissing {
		return PathConservative
	}
	return PathFull
}
