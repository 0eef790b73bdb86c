package workflow

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/incidentd/internal/genai"
)

// Node is one step of the workflow. Nodes mutate the state and never abort
// the run: a failing node records its error in State.Error and fills
// degraded defaults so downstream nodes can proceed.
type Node interface {
	Name() string
	Run(ctx context.Context, state *State)
}

// agentMessages builds the three-message exchange every agent uses: the
// system prompt as a user turn, a fixed model acknowledgement, then the
// task itself.
func agentMessages(system, ack, task string) []genai.Message {
	return []genai.Message{
		{Role: genai.RoleUser, Content: system},
		{Role: genai.RoleModel, Content: ack},
		{Role: genai.RoleUser, Content: task},
	}
}

// recordError stores the first node failure on the state.
func recordError(state *State, stage string, err error) {
	if state.Error == "" {
		state.Error = "Error in " + stage + ": " + err.Error()
	}
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// fieldMissing reports whether an extracted field carries no usable value.
func fieldMissing(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "unknown", "not specified", "":
		return true
	default:
		return false
	}
}
