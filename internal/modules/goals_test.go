package modules

import (
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

func TestGoalAddStartsAtZeroProgress(t *testing.T) {
	_, r := testRegistry(t)
	goal, err := r.Goals.Add("ship it", "2026-06-30")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if goal.Progress != 0 {
		t.Errorf("progress = %d, want 0 for a goal with no milestones", goal.Progress)
	}
	if goal.Status != models.GoalOnTrack {
		t.Errorf("status = %q, want On Track", goal.Status)
	}
}

func TestGoalMilestonesDriveProgress(t *testing.T) {
	_, r := testRegistry(t)
	goal, _ := r.Goals.Add("learn go", "2026-12-31")

	if err := r.Goals.AddMilestones(goal.ID, []string{"basics", "concurrency", "generics"}); err != nil {
		t.Fatalf("AddMilestones: %v", err)
	}
	got, _ := r.Goals.Get(goal.ID)
	if len(got.Milestones) != 3 || got.Progress != 0 {
		t.Fatalf("after add: milestones=%d progress=%d", len(got.Milestones), got.Progress)
	}

	_ = r.Goals.ToggleMilestone(goal.ID, got.Milestones[0].ID)
	got, _ = r.Goals.Get(goal.ID)
	if got.Progress != 33 {
		t.Errorf("progress = %d, want 33", got.Progress)
	}

	_ = r.Goals.ToggleMilestone(goal.ID, got.Milestones[1].ID)
	_ = r.Goals.ToggleMilestone(goal.ID, got.Milestones[2].ID)
	got, _ = r.Goals.Get(goal.ID)
	if got.Progress != 100 {
		t.Errorf("progress = %d, want 100", got.Progress)
	}

	// Untoggling rolls the percentage back.
	_ = r.Goals.ToggleMilestone(goal.ID, got.Milestones[2].ID)
	got, _ = r.Goals.Get(goal.ID)
	if got.Progress != 67 {
		t.Errorf("progress = %d, want 67", got.Progress)
	}
}

func TestGoalSetStatus(t *testing.T) {
	_, r := testRegistry(t)
	goal, _ := r.Goals.Add("risky", "2026-01-01")
	if err := r.Goals.SetStatus(goal.ID, models.GoalAtRisk); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := r.Goals.Get(goal.ID)
	if got.Status != models.GoalAtRisk {
		t.Errorf("status = %q", got.Status)
	}
}
