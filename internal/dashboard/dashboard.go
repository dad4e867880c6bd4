// Package dashboard computes the read-only landing-view rollup over the
// persisted collections. It reads durable snapshots on every call rather
// than subscribing to live state, so the result always reflects what was
// last committed.
package dashboard

import (
	"sort"

	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// TaskCounts summarizes the task list.
type TaskCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// HabitCounts summarizes habit state for today.
type HabitCounts struct {
	Total      int `json:"total"`
	DoneToday  int `json:"done_today"`
	BestStreak int `json:"best_streak"`
}

// GoalProgress is the per-goal completion rollup.
type GoalProgress struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Status   models.GoalStatus `json:"status"`
	Progress int               `json:"progress"`
}

// GoalCounts summarizes goals and carries per-goal progress.
type GoalCounts struct {
	Total   int            `json:"total"`
	OnTrack int            `json:"on_track"`
	AtRisk  int            `json:"at_risk"`
	Behind  int            `json:"behind"`
	Goals   []GoalProgress `json:"goals"`
}

// Summary is the cross-module landing-view projection.
type Summary struct {
	Tasks        TaskCounts     `json:"tasks"`
	Habits       HabitCounts    `json:"habits"`
	Goals        GoalCounts     `json:"goals"`
	RecentNotes  []models.Note  `json:"recent_notes"`
	RecentTasks  []models.Task  `json:"recent_tasks"`
	RecentHabits []models.Habit `json:"recent_habits"`
}

// Aggregator produces summaries from one store.
type Aggregator struct {
	tasks  *storage.Collection[models.Task]
	habits *storage.Collection[models.Habit]
	goals  *storage.Collection[models.Goal]
	notes  *storage.Collection[models.Note]

	recentLimit int
}

// New builds an aggregator over the store. limit caps the recent-item
// lists; values below 1 fall back to 3.
func New(store *storage.Store, limit int) *Aggregator {
	if limit < 1 {
		limit = 3
	}
	return &Aggregator{
		tasks:       storage.NewCollection[models.Task](store, models.CollectionTasks),
		habits:      storage.NewCollection[models.Habit](store, models.CollectionHabits),
		goals:       storage.NewCollection[models.Goal](store, models.CollectionGoals),
		notes:       storage.NewCollection[models.Note](store, models.CollectionNotes),
		recentLimit: limit,
	}
}

// Summary recomputes the full rollup from durable storage. There is no
// caching; each call reads every relevant collection.
func (a *Aggregator) Summary() Summary {
	tasks := a.tasks.Get()
	habits := a.habits.Get()
	goals := a.goals.Get()
	notes := a.notes.Get()

	s := Summary{
		Tasks:  taskCounts(tasks),
		Habits: habitCounts(habits),
		Goals:  goalCounts(goals),
	}
	s.RecentNotes = recentNotes(notes, a.recentLimit)
	s.RecentTasks = head(tasks, a.recentLimit)
	s.RecentHabits = head(habits, a.recentLimit)
	return s
}

func taskCounts(tasks []models.Task) TaskCounts {
	c := TaskCounts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

func habitCounts(habits []models.Habit) HabitCounts {
	c := HabitCounts{Total: len(habits)}
	for _, h := range habits {
		if h.CompletedToday {
			c.DoneToday++
		}
		if h.Streak > c.BestStreak {
			c.BestStreak = h.Streak
		}
	}
	return c
}

func goalCounts(goals []models.Goal) GoalCounts {
	c := GoalCounts{Total: len(goals), Goals: make([]GoalProgress, 0, len(goals))}
	for _, g := range goals {
		switch g.Status {
		case models.GoalOnTrack:
			c.OnTrack++
		case models.GoalAtRisk:
			c.AtRisk++
		case models.GoalBehind:
			c.Behind++
		}
		c.Goals = append(c.Goals, GoalProgress{
			ID:       g.ID,
			Title:    g.Title,
			Status:   g.Status,
			Progress: g.ComputeProgress(),
		})
	}
	return c
}

// recentNotes orders by last-modified descending. Ties keep original
// array order, first-encountered wins.
func recentNotes(notes []models.Note, limit int) []models.Note {
	sorted := make([]models.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})
	return head(sorted, limit)
}

func head[T any](items []T, n int) []T {
	if len(items) < n {
		n = len(items)
	}
	out := make([]T, n)
	copy(out, items[:n])
	return out
}
