package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// TaskService manages the task collection.
type TaskService struct {
	mirror *mirror.Mirror[models.Task]
	notify Notifier
}

func newTaskService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *TaskService {
	col := storage.NewCollection[models.Task](store, models.CollectionTasks)
	return &TaskService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Task](onErr)),
		notify: notify,
	}
}

func seedTasks() []models.Task {
	return []models.Task{
		{ID: "1", Title: "Review quarterly goals", Priority: models.PriorityHigh, Recurrence: models.RecurrenceNone,
			Tags: []string{"Strategy"}, DueDate: "2025-11-25",
			Subtasks: []models.SubTask{
				{ID: "s1", Title: "Check Q3 metrics", Completed: true},
				{ID: "s2", Title: "Draft Q4 objectives"},
			}},
		{ID: "2", Title: "Email marketing draft", Completed: true, Priority: models.PriorityMedium,
			Recurrence: models.RecurrenceNone, Tags: []string{"Marketing"}, DueDate: "2025-11-20"},
		{ID: "3", Title: "Schedule dentist appointment", Priority: models.PriorityLow,
			Recurrence: models.RecurrenceNone, Tags: []string{"Personal"}},
	}
}

func (s *TaskService) init() { s.mirror.Init(seedTasks()) }

// List returns a snapshot of all tasks.
func (s *TaskService) List() []models.Task { return s.mirror.Snapshot() }

// Get returns a single task by id.
func (s *TaskService) Get(id string) (models.Task, bool) { return s.mirror.Find(id) }

// Add creates a task and prepends it to the list.
func (s *TaskService) Add(title string, priority models.Priority, dueDate string, recurrence models.Recurrence, tags []string) (models.Task, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}
	if tags == nil {
		tags = []string{}
	}
	task := models.Task{
		ID:         models.NewID(),
		Title:      title,
		Priority:   priority,
		DueDate:    dueDate,
		Recurrence: recurrence,
		Tags:       tags,
	}
	err := s.mirror.Apply(func(tasks []models.Task) []models.Task {
		return append([]models.Task{task}, tasks...)
	})
	s.notify(models.CollectionTasks, "created", task.ID)
	return task, err
}

// Toggle flips a task's completed flag.
func (s *TaskService) Toggle(id string) error {
	err := s.apply(id, func(t *models.Task) {
		t.Completed = !t.Completed
	})
	s.notify(models.CollectionTasks, "updated", id)
	return err
}

// ToggleSubtask flips one subtask's completed flag.
func (s *TaskService) ToggleSubtask(taskID, subtaskID string) error {
	err := s.apply(taskID, func(t *models.Task) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == subtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			}
		}
	})
	s.notify(models.CollectionTasks, "updated", taskID)
	return err
}

// SetSubtasks replaces a task's subtask list with fresh entries built from
// titles (used for AI-suggested breakdowns).
func (s *TaskService) SetSubtasks(taskID string, titles []string) error {
	subs := make([]models.SubTask, len(titles))
	for i, title := range titles {
		subs[i] = models.SubTask{ID: models.NewID(), Title: title}
	}
	err := s.apply(taskID, func(t *models.Task) {
		t.Subtasks = subs
	})
	s.notify(models.CollectionTasks, "updated", taskID)
	return err
}

// Update replaces mutable fields of a task.
func (s *TaskService) Update(id string, fn func(*models.Task)) error {
	err := s.apply(id, fn)
	s.notify(models.CollectionTasks, "updated", id)
	return err
}

// Remove deletes a task. Removing an unknown id is a no-op.
func (s *TaskService) Remove(id string) error {
	err := s.mirror.Apply(func(tasks []models.Task) []models.Task {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		return kept
	})
	s.notify(models.CollectionTasks, "deleted", id)
	return err
}

func (s *TaskService) apply(id string, fn func(*models.Task)) error {
	return s.mirror.Apply(func(tasks []models.Task) []models.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				fn(&tasks[i])
			}
		}
		return tasks
	})
}
