package domain

import "testing"

func TestStages_SevenOrderedUniqueStages(t *testing.T) {
	stages := Stages()
	if len(stages) != 7 {
		t.Fatalf("expected 7 canonical stages, got %d", len(stages))
	}

	seen := map[string]bool{}
	for i, s := range stages {
		if s.ID == "" || s.Title == "" {
			t.Fatalf("stage %d has empty id or title", i)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate stage id %q", s.ID)
		}
		seen[s.ID] = true
		if StagePosition(s.ID) != i {
			t.Fatalf("stage %q reports position %d, want %d", s.ID, StagePosition(s.ID), i)
		}
	}
}

func TestStages_ReturnsDefensiveCopy(t *testing.T) {
	mutated := Stages()
	mutated[0].Title = "tampered"

	if Stages()[0].Title == "tampered" {
		t.Fatalf("canonical stage list must not be mutable through Stages()")
	}
}

func TestFirstStageID(t *testing.T) {
	if FirstStageID() != StageLeadCapture {
		t.Fatalf("expected first stage %q, got %q", StageLeadCapture, FirstStageID())
	}
}

func TestPredecessorID(t *testing.T) {
	if _, ok := PredecessorID(StageLeadCapture); ok {
		t.Fatalf("first stage must have no predecessor")
	}
	prev, ok := PredecessorID(StageClosedWon)
	if !ok || prev != StageNegotiation {
		t.Fatalf("expected predecessor of closed_won to be negotiation, got %q (ok=%v)", prev, ok)
	}
	if _, ok := PredecessorID("made_up"); ok {
		t.Fatalf("unknown stage must have no predecessor")
	}
}

func TestIsKnownStage(t *testing.T) {
	if !IsKnownStage(StageOnboarding) {
		t.Fatalf("onboarding should be a known stage")
	}
	if IsKnownStage("retention") {
		t.Fatalf("retention is not a canonical stage")
	}
}
