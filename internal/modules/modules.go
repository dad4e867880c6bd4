// Package modules implements the feature services of the dashboard. Each
// service owns the view-state mirror for its collection(s), carries the
// demo seed written on first run, and recomputes derived fields at
// mutation time.
package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/storage"
)

// Notifier receives record-change events. kind is one of "created",
// "updated", "deleted".
type Notifier func(collection, kind, id string)

// Registry wires every feature service over one store.
type Registry struct {
	Tasks     *TaskService
	Habits    *HabitService
	Goals     *GoalService
	Calendar  *CalendarService
	Notes     *NoteService
	Finance   *FinanceService
	Health    *HealthService
	Learn     *CourseService
	Media     *MediaService
	Workflows *WorkflowService
	Chat      *ChatService

	reloaders map[string]func()
}

// NewRegistry builds all feature services. notify may be nil. onCommitError
// is invoked when a mutation's persist step fails (quota exhaustion) while
// the in-memory state is already updated.
func NewRegistry(store *storage.Store, logger *slog.Logger, notify Notifier, onCommitError mirror.CommitErrorHandler) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if notify == nil {
		notify = func(string, string, string) {}
	}

	r := &Registry{reloaders: make(map[string]func())}
	r.Tasks = newTaskService(store, logger, notify, onCommitError)
	r.Habits = newHabitService(store, logger, notify, onCommitError)
	r.Goals = newGoalService(store, logger, notify, onCommitError)
	r.Calendar = newCalendarService(store, logger, notify, onCommitError)
	r.Notes = newNoteService(store, logger, notify, onCommitError)
	r.Finance = newFinanceService(store, logger, notify, onCommitError)
	r.Health = newHealthService(store, logger, notify, onCommitError)
	r.Learn = newCourseService(store, logger, notify, onCommitError)
	r.Media = newMediaService(store, logger, notify, onCommitError)
	r.Workflows = newWorkflowService(store, logger, notify, onCommitError)
	r.Chat = newChatService(store, logger, notify, onCommitError)

	for key, fn := range map[string]func(){
		r.Tasks.mirror.Key():     r.Tasks.mirror.Reload,
		r.Habits.mirror.Key():    r.Habits.mirror.Reload,
		r.Goals.mirror.Key():     r.Goals.mirror.Reload,
		r.Calendar.mirror.Key():  r.Calendar.mirror.Reload,
		r.Notes.mirror.Key():     r.Notes.mirror.Reload,
		r.Finance.txns.Key():     r.Finance.txns.Reload,
		r.Finance.budgets.Key():  r.Finance.budgets.Reload,
		r.Health.mirror.Key():    r.Health.mirror.Reload,
		r.Learn.mirror.Key():     r.Learn.mirror.Reload,
		r.Media.mirror.Key():     r.Media.mirror.Reload,
		r.Workflows.mirror.Key(): r.Workflows.mirror.Reload,
		r.Chat.mirror.Key():      r.Chat.mirror.Reload,
	} {
		r.reloaders[key] = fn
	}
	return r
}

// Init seeds every empty collection with its demo set.
func (r *Registry) Init() {
	r.Tasks.init()
	r.Habits.init()
	r.Goals.init()
	r.Calendar.init()
	r.Notes.init()
	r.Finance.init()
	r.Health.init()
	r.Learn.init()
	r.Media.init()
	r.Workflows.init()
	r.Chat.init()
}

// Reload refreshes the mirror for a collection from durable storage.
// Returns false when key does not name a mirrored collection.
func (r *Registry) Reload(key string) bool {
	fn, ok := r.reloaders[key]
	if !ok {
		return false
	}
	fn()
	return true
}
