package dashboard

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(storage.NewMemory(0), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return store
}

func saveTasks(t *testing.T, store *storage.Store, tasks []models.Task) {
	t.Helper()
	if err := storage.NewCollection[models.Task](store, models.CollectionTasks).Save(tasks); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
}

func TestSummaryCounts(t *testing.T) {
	store := testStore(t)
	saveTasks(t, store, []models.Task{
		{ID: "1", Title: "a"},
		{ID: "2", Title: "b", Completed: true},
		{ID: "3", Title: "c"},
	})
	_ = storage.NewCollection[models.Habit](store, models.CollectionHabits).Save([]models.Habit{
		{ID: "1", Name: "x", Streak: 4, CompletedToday: true},
		{ID: "2", Name: "y", Streak: 9},
	})
	_ = storage.NewCollection[models.Goal](store, models.CollectionGoals).Save([]models.Goal{
		{ID: "g1", Title: "ship", Status: models.GoalOnTrack, Milestones: []models.Milestone{
			{ID: "m1", Completed: true}, {ID: "m2"},
		}},
		{ID: "g2", Title: "run", Status: models.GoalAtRisk},
		{ID: "g3", Title: "stalled", Status: models.GoalBehind},
	})

	s := New(store, 3).Summary()

	if s.Tasks != (TaskCounts{Total: 3, Active: 2, Completed: 1}) {
		t.Errorf("tasks = %+v", s.Tasks)
	}
	if s.Habits != (HabitCounts{Total: 2, DoneToday: 1, BestStreak: 9}) {
		t.Errorf("habits = %+v", s.Habits)
	}
	if s.Goals.Total != 3 || s.Goals.OnTrack != 1 || s.Goals.AtRisk != 1 || s.Goals.Behind != 1 {
		t.Errorf("goals = %+v", s.Goals)
	}
	if len(s.Goals.Goals) != 3 {
		t.Fatalf("per-goal rollups = %d", len(s.Goals.Goals))
	}
	if s.Goals.Goals[0].Progress != 50 {
		t.Errorf("goal g1 progress = %d, want 50", s.Goals.Goals[0].Progress)
	}
	// A goal with no milestones reports zero, not an error.
	if s.Goals.Goals[1].Progress != 0 {
		t.Errorf("goal g2 progress = %d, want 0", s.Goals.Goals[1].Progress)
	}
}

func TestSummaryEmptyStore(t *testing.T) {
	s := New(testStore(t), 3).Summary()
	if s.Tasks.Total != 0 || s.Habits.Total != 0 || s.Goals.Total != 0 {
		t.Errorf("summary over empty store = %+v", s)
	}
	if len(s.RecentNotes) != 0 {
		t.Errorf("recent notes = %v", s.RecentNotes)
	}
}

func TestRecentNotesOrderedByLastModified(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = storage.NewCollection[models.Note](store, models.CollectionNotes).Save([]models.Note{
		{ID: "old", Title: "old", LastModified: base.Add(-48 * time.Hour)},
		{ID: "tie-a", Title: "tie a", LastModified: base},
		{ID: "tie-b", Title: "tie b", LastModified: base},
		{ID: "newest", Title: "newest", LastModified: base.Add(time.Hour)},
	})

	s := New(store, 3).Summary()
	if len(s.RecentNotes) != 3 {
		t.Fatalf("recent notes = %d, want 3", len(s.RecentNotes))
	}
	if s.RecentNotes[0].ID != "newest" {
		t.Errorf("first recent note = %q", s.RecentNotes[0].ID)
	}
	// Equal timestamps keep their stored order.
	if s.RecentNotes[1].ID != "tie-a" || s.RecentNotes[2].ID != "tie-b" {
		t.Errorf("tie order = %q, %q", s.RecentNotes[1].ID, s.RecentNotes[2].ID)
	}
}

func TestRecentListsRespectLimit(t *testing.T) {
	store := testStore(t)
	saveTasks(t, store, []models.Task{
		{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"},
	})

	s := New(store, 2).Summary()
	if len(s.RecentTasks) != 2 {
		t.Errorf("recent tasks = %d, want 2", len(s.RecentTasks))
	}
	if s.RecentTasks[0].ID != "1" {
		t.Errorf("recent tasks start at %q, want stored order", s.RecentTasks[0].ID)
	}
}
