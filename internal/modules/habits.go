package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// HabitService manages the habit collection.
type HabitService struct {
	mirror *mirror.Mirror[models.Habit]
	notify Notifier
}

func newHabitService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *HabitService {
	col := storage.NewCollection[models.Habit](store, models.CollectionHabits)
	return &HabitService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Habit](onErr)),
		notify: notify,
	}
}

func seedHabits() []models.Habit {
	return []models.Habit{
		{ID: "1", Name: "Morning Meditation", Streak: 5, CompletedToday: true, Frequency: models.FrequencyDaily},
		{ID: "2", Name: "Read 30 mins", Streak: 12, Frequency: models.FrequencyDaily},
		{ID: "3", Name: "Zero Inbox", Streak: 2, Frequency: models.FrequencyDaily},
	}
}

func (s *HabitService) init() { s.mirror.Init(seedHabits()) }

// List returns a snapshot of all habits.
func (s *HabitService) List() []models.Habit { return s.mirror.Snapshot() }

// Add creates a habit with a zero streak.
func (s *HabitService) Add(name string, frequency models.Frequency) (models.Habit, error) {
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	habit := models.Habit{ID: models.NewID(), Name: name, Frequency: frequency}
	err := s.mirror.Apply(func(habits []models.Habit) []models.Habit {
		return append([]models.Habit{habit}, habits...)
	})
	s.notify(models.CollectionHabits, "created", habit.ID)
	return habit, err
}

// Toggle flips today's completion flag and adjusts the streak counter.
func (s *HabitService) Toggle(id string) error {
	err := s.mirror.Apply(func(habits []models.Habit) []models.Habit {
		for i := range habits {
			if habits[i].ID != id {
				continue
			}
			if habits[i].CompletedToday {
				habits[i].CompletedToday = false
				if habits[i].Streak > 0 {
					habits[i].Streak--
				}
			} else {
				habits[i].CompletedToday = true
				habits[i].Streak++
			}
		}
		return habits
	})
	s.notify(models.CollectionHabits, "updated", id)
	return err
}

// ResetDay clears every habit's completed-today flag (new-day rollover);
// streaks of habits left incomplete are zeroed.
func (s *HabitService) ResetDay() error {
	err := s.mirror.Apply(func(habits []models.Habit) []models.Habit {
		for i := range habits {
			if !habits[i].CompletedToday {
				habits[i].Streak = 0
			}
			habits[i].CompletedToday = false
		}
		return habits
	})
	s.notify(models.CollectionHabits, "updated", "")
	return err
}

// Remove deletes a habit.
func (s *HabitService) Remove(id string) error {
	err := s.mirror.Apply(func(habits []models.Habit) []models.Habit {
		kept := habits[:0]
		for _, h := range habits {
			if h.ID != id {
				kept = append(kept, h)
			}
		}
		return kept
	})
	s.notify(models.CollectionHabits, "deleted", id)
	return err
}
