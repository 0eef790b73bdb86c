// Package workflow runs incident reports through a conditional analysis
// pipeline: standard information extraction, a routing decision on
// completeness, and either a conservative advisory path or a full
// summarize-retrieve-mitigate path.
package workflow

// RetrievedIncident is one historical incident surfaced by semantic search,
// carried into mitigation as a worked example.
type RetrievedIncident struct {
	IncidentID      string
	Description     string
	Recommendations string
	Metadata        map[string]any
	Score           float32
}

// State is the shared blackboard mutated by each node in turn.
type State struct {
	// IncidentReport is the full free-text report under analysis.
	IncidentReport string

	// Standard information extracted by the validation node.
	Who    string
	What   string
	Where  string
	When   string
	Impact string
	Status string

	// CriticalInfoMissing is set when the timeline or the impact could
	// not be extracted; it selects the conservative path.
	CriticalInfoMissing bool

	// Description is the retrieval query text: the extracted WHAT, or
	// the report's leading characters when extraction produced nothing.
	Description string

	Summary string

	RetrievedIncidents       []RetrievedIncident
	RetrievedRecommendations []string

	MitigationPlan string

	// FinalResponse is always populated by the time the workflow ends,
	// even on a degraded run.
	FinalResponse string

	// Error holds the first node failure. Nodes degrade instead of
	// aborting, so a non-empty Error still comes with a FinalResponse.
	Error string
}

// NewState initializes a workflow state for one incident report.
func NewState(incidentReport string) *State {
	return &State{IncidentReport: incidentReport}
}

// Validation groups the extracted standard information for result reporting.
type Validation struct {
	Who                 string `json:"who"`
	What                string `json:"what"`
	Where               string `json:"where"`
	When                string `json:"when"`
	Impact              string `json:"impact"`
	Status              string `json:"status"`
	CriticalInfoMissing bool   `json:"critical_info_missing"`
}

// Result is the externally visible outcome of one workflow run.
type Result struct {
	Response           string              `json:"response"`
	Summary            string              `json:"summary"`
	MitigationPlan     string              `json:"mitigation_plan"`
	Validation         Validation          `json:"validation"`
	RetrievedIncidents []RetrievedIncident `json:"retrieved_incidents"`
	NumIncidents       int                 `json:"num_retrieved_incidents"`
	NumRecommendations int                 `json:"num_recommendations"`
	Error              string              `json:"error,omitempty"`
}

// buildResult projects the final state into a Result.
func buildResult(state *State) Result {
	return Result{
		Response:       state.FinalResponse,
		Summary:        state.Summary,
		MitigationPlan: state.MitigationPlan,
		Validation: Validation{
			Who:                 state.Who,
			What:                state.What,
			Where:               state.Where,
			When:                state.When,
			Impact:              state.Impact,
			Status:              state.Status,
			CriticalInfoMissing: state.CriticalInfoMissing,
		},
		RetrievedIncidents: state.RetrievedIncidents,
		NumIncidents:       len(state.RetrievedIncidents),
		NumRecommendations: len(state.RetrievedRecommendations),
		Error:              state.Error,
	}
}
