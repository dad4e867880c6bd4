package modules

import (
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

func TestHabitToggleAdjustsStreak(t *testing.T) {
	_, r := testRegistry(t)
	habit, err := r.Habits.Add("meditate", models.FrequencyDaily)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	_ = r.Habits.Toggle(habit.ID)
	got := findHabit(t, r, habit.ID)
	if !got.CompletedToday || got.Streak != 1 {
		t.Errorf("after toggle: completed=%v streak=%d", got.CompletedToday, got.Streak)
	}

	// Untoggling the same day takes the streak credit back.
	_ = r.Habits.Toggle(habit.ID)
	got = findHabit(t, r, habit.ID)
	if got.CompletedToday || got.Streak != 0 {
		t.Errorf("after untoggle: completed=%v streak=%d", got.CompletedToday, got.Streak)
	}

	// The streak never goes negative.
	_ = r.Habits.Toggle(habit.ID)
	_ = r.Habits.Toggle(habit.ID)
	if got = findHabit(t, r, habit.ID); got.Streak != 0 {
		t.Errorf("streak = %d, want 0", got.Streak)
	}
}

func TestHabitResetDay(t *testing.T) {
	_, r := testRegistry(t)
	done, _ := r.Habits.Add("done today", models.FrequencyDaily)
	missed, _ := r.Habits.Add("missed", models.FrequencyDaily)
	_ = r.Habits.Toggle(done.ID)
	_ = r.Habits.Toggle(missed.ID)
	_ = r.Habits.Toggle(missed.ID) // complete then undo, leaving it missed

	if err := r.Habits.ResetDay(); err != nil {
		t.Fatalf("ResetDay: %v", err)
	}
	if got := findHabit(t, r, done.ID); got.CompletedToday || got.Streak != 1 {
		t.Errorf("completed habit after rollover: completed=%v streak=%d", got.CompletedToday, got.Streak)
	}
	if got := findHabit(t, r, missed.ID); got.Streak != 0 {
		t.Errorf("missed habit keeps streak %d, want 0", got.Streak)
	}
}

func TestHabitDefaultsToDaily(t *testing.T) {
	_, r := testRegistry(t)
	habit, _ := r.Habits.Add("read", "")
	if habit.Frequency != models.FrequencyDaily {
		t.Errorf("frequency = %q, want Daily", habit.Frequency)
	}
}

func findHabit(t *testing.T, r *Registry, id string) models.Habit {
	t.Helper()
	for _, h := range r.Habits.List() {
		if h.ID == id {
			return h
		}
	}
	t.Fatalf("habit %s not found", id)
	return models.Habit{}
}
