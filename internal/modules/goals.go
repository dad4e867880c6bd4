package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// GoalService manages the goal collection. Progress is recomputed from the
// milestone list on every milestone mutation and stored redundantly.
type GoalService struct {
	mirror *mirror.Mirror[models.Goal]
	notify Notifier
}

func newGoalService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *GoalService {
	col := storage.NewCollection[models.Goal](store, models.CollectionGoals)
	return &GoalService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Goal](onErr)),
		notify: notify,
	}
}

func seedGoals() []models.Goal {
	return []models.Goal{
		{ID: "g1", Title: "Launch MVP", Deadline: "2025-12-31", Progress: 67, Status: models.GoalOnTrack,
			Milestones: []models.Milestone{
				{ID: "m1", Title: "Design System", Completed: true},
				{ID: "m2", Title: "Core Features", Completed: true},
				{ID: "m3", Title: "User Testing"},
			}},
		{ID: "g2", Title: "Run a Marathon", Deadline: "2026-04-15", Progress: 50, Status: models.GoalAtRisk,
			Milestones: []models.Milestone{
				{ID: "m1", Title: "Buy Shoes", Completed: true},
				{ID: "m2", Title: "Run 5k"},
			}},
	}
}

func (s *GoalService) init() { s.mirror.Init(seedGoals()) }

// List returns a snapshot of all goals.
func (s *GoalService) List() []models.Goal { return s.mirror.Snapshot() }

// Get returns a single goal by id.
func (s *GoalService) Get(id string) (models.Goal, bool) { return s.mirror.Find(id) }

// Add creates a goal with no milestones (reported as 0% complete).
func (s *GoalService) Add(title, deadline string) (models.Goal, error) {
	goal := models.Goal{
		ID:         models.NewID(),
		Title:      title,
		Deadline:   deadline,
		Status:     models.GoalOnTrack,
		Milestones: []models.Milestone{},
	}
	err := s.mirror.Apply(func(goals []models.Goal) []models.Goal {
		return append([]models.Goal{goal}, goals...)
	})
	s.notify(models.CollectionGoals, "created", goal.ID)
	return goal, err
}

// AddMilestones appends fresh milestones built from titles and refreshes
// the stored progress percentage.
func (s *GoalService) AddMilestones(goalID string, titles []string) error {
	err := s.apply(goalID, func(g *models.Goal) {
		for _, title := range titles {
			g.Milestones = append(g.Milestones, models.Milestone{ID: models.NewID(), Title: title})
		}
		g.Progress = g.ComputeProgress()
	})
	s.notify(models.CollectionGoals, "updated", goalID)
	return err
}

// ToggleMilestone flips one milestone and refreshes the stored progress.
func (s *GoalService) ToggleMilestone(goalID, milestoneID string) error {
	err := s.apply(goalID, func(g *models.Goal) {
		for i := range g.Milestones {
			if g.Milestones[i].ID == milestoneID {
				g.Milestones[i].Completed = !g.Milestones[i].Completed
			}
		}
		g.Progress = g.ComputeProgress()
	})
	s.notify(models.CollectionGoals, "updated", goalID)
	return err
}

// SetStatus overrides the tracked status label.
func (s *GoalService) SetStatus(goalID string, status models.GoalStatus) error {
	err := s.apply(goalID, func(g *models.Goal) {
		g.Status = status
	})
	s.notify(models.CollectionGoals, "updated", goalID)
	return err
}

// Remove deletes a goal.
func (s *GoalService) Remove(id string) error {
	err := s.mirror.Apply(func(goals []models.Goal) []models.Goal {
		kept := goals[:0]
		for _, g := range goals {
			if g.ID != id {
				kept = append(kept, g)
			}
		}
		return kept
	})
	s.notify(models.CollectionGoals, "deleted", id)
	return err
}

func (s *GoalService) apply(id string, fn func(*models.Goal)) error {
	return s.mirror.Apply(func(goals []models.Goal) []models.Goal {
		for i := range goals {
			if goals[i].ID == id {
				fn(&goals[i])
			}
		}
		return goals
	})
}
