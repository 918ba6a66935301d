// Package domain holds the canonical lifecycle definition for the
// milestones bounded context.
package domain

// Stage describes one canonical lifecycle step. The slice order in
// canonicalStages is the single source of truth for progression; it is
// fixed at compile time and never mutated.
type Stage struct {
	ID          string
	Title       string
	Description string
}

const (
	StageLeadCapture   = "lead_capture"
	StageQualification = "qualification"
	StageDiscoveryCall = "discovery_call"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageOnboarding    = "onboarding"
)

var canonicalStages = []Stage{
	{
		ID:          StageLeadCapture,
		Title:       "Lead captured",
		Description: "Contact details received and recorded in the pipeline.",
	},
	{
		ID:          StageQualification,
		Title:       "Qualification",
		Description: "Budget, authority and fit reviewed against our service offering.",
	},
	{
		ID:          StageDiscoveryCall,
		Title:       "Discovery call",
		Description: "Introductory call held to map goals and current marketing spend.",
	},
	{
		ID:          StageProposal,
		Title:       "Proposal sent",
		Description: "Tailored campaign proposal and pricing delivered to the lead.",
	},
	{
		ID:          StageNegotiation,
		Title:       "Negotiation",
		Description: "Scope, terms and retainer details being finalized.",
	},
	{
		ID:          StageClosedWon,
		Title:       "Deal closed",
		Description: "Agreement signed; the lead is now a client.",
	},
	{
		ID:          StageOnboarding,
		Title:       "Onboarding",
		Description: "Kickoff complete, accounts connected and first campaign scheduled.",
	},
}

var stageIndex = func() map[string]int {
	idx := make(map[string]int, len(canonicalStages))
	for i, s := range canonicalStages {
		idx[s.ID] = i
	}
	return idx
}()

// Stages returns the canonical stage list in lifecycle order. Callers
// receive a copy so the canonical definition cannot be mutated.
func Stages() []Stage {
	out := make([]Stage, len(canonicalStages))
	copy(out, canonicalStages)
	return out
}

// StageCount is the number of canonical stages.
func StageCount() int {
	return len(canonicalStages)
}

// FirstStageID returns the ID of the initial stage. Completing it
// represents the lead's creation event, so a reset never reverts it.
func FirstStageID() string {
	return canonicalStages[0].ID
}

// StageByID looks up a canonical stage.
func StageByID(id string) (Stage, bool) {
	i, ok := stageIndex[id]
	if !ok {
		return Stage{}, false
	}
	return canonicalStages[i], true
}

// StagePosition returns the zero-based canonical position of a stage,
// or -1 for unknown IDs.
func StagePosition(id string) int {
	i, ok := stageIndex[id]
	if !ok {
		return -1
	}
	return i
}

// IsKnownStage reports whether the ID names a canonical stage.
func IsKnownStage(id string) bool {
	_, ok := stageIndex[id]
	return ok
}

// PredecessorID returns the stage immediately before the given one in
// canonical order. The first stage (and unknown IDs) have none.
func PredecessorID(id string) (string, bool) {
	i, ok := stageIndex[id]
	if !ok || i == 0 {
		return "", false
	}
	return canonicalStages[i-1].ID, true
}
