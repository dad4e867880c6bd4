package modules

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// Recognized config keys per step type. Keys outside this set are dropped
// on write rather than passed through silently.
var stepConfigKeys = map[models.StepType]map[string]struct{}{
	models.StepTrigger: {"time": {}, "schedule": {}, "event": {}, "filter": {}},
	models.StepAction:  {"model": {}, "to": {}, "folder": {}, "service": {}, "target": {}, "message": {}},
	models.StepLogic:   {"condition": {}, "operator": {}, "value": {}},
}

// WorkflowService manages automation sequences.
type WorkflowService struct {
	mirror *mirror.Mirror[models.Workflow]
	notify Notifier
	logger *slog.Logger
}

func newWorkflowService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *WorkflowService {
	col := storage.NewCollection[models.Workflow](store, models.CollectionWorkflows)
	return &WorkflowService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Workflow](onErr)),
		notify: notify,
		logger: logger,
	}
}

func seedWorkflows() []models.Workflow {
	return []models.Workflow{
		{ID: "1", Name: "Morning Briefing",
			Description: "Compile tasks and weather into a daily summary.",
			Active:      true, LastRun: "Today, 8:00 AM",
			Steps: []models.WorkflowStep{
				{ID: "s1", Type: models.StepTrigger, Label: "Every Day at 8:00 AM", Config: map[string]string{"time": "08:00"}},
				{ID: "s2", Type: models.StepAction, Label: "Generate Daily Brief", Config: map[string]string{"model": "default"}},
				{ID: "s3", Type: models.StepAction, Label: "Send Notification", Config: map[string]string{"to": "me"}},
			}},
		{ID: "2", Name: "Task Logger",
			Description: "Log completed high-priority tasks as notes.",
			Steps: []models.WorkflowStep{
				{ID: "s1", Type: models.StepTrigger, Label: "Task Completed", Config: map[string]string{"filter": "High Priority"}},
				{ID: "s2", Type: models.StepAction, Label: "Create Note", Config: map[string]string{"folder": "Archive"}},
			}},
	}
}

func (s *WorkflowService) init() { s.mirror.Init(seedWorkflows()) }

// List returns a snapshot of all workflows.
func (s *WorkflowService) List() []models.Workflow { return s.mirror.Snapshot() }

// Get returns a single workflow by id.
func (s *WorkflowService) Get(id string) (models.Workflow, bool) { return s.mirror.Find(id) }

// validateStep checks structural fields and filters the config map down to
// the keys recognized for the step type.
func (s *WorkflowService) validateStep(step *models.WorkflowStep) error {
	if err := validation.ValidateStruct(step,
		validation.Field(&step.Type, validation.Required,
			validation.In(models.StepTrigger, models.StepAction, models.StepLogic)),
		validation.Field(&step.Label, validation.Required),
	); err != nil {
		return fmt.Errorf("workflow step %q: %w", step.Label, err)
	}
	recognized := stepConfigKeys[step.Type]
	filtered := make(map[string]string, len(step.Config))
	for k, v := range step.Config {
		if _, ok := recognized[k]; !ok {
			s.logger.Warn("workflow: dropping unrecognized step config key",
				slog.String("step", step.Label), slog.String("key", k))
			continue
		}
		filtered[k] = v
	}
	step.Config = filtered
	return nil
}

// Add validates and stores a workflow. Step ids are filled in when absent.
func (s *WorkflowService) Add(name, description string, steps []models.WorkflowStep) (models.Workflow, error) {
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = models.NewID()
		}
		if steps[i].Config == nil {
			steps[i].Config = map[string]string{}
		}
		if err := s.validateStep(&steps[i]); err != nil {
			return models.Workflow{}, err
		}
	}
	wf := models.Workflow{
		ID:          models.NewID(),
		Name:        name,
		Description: description,
		Steps:       steps,
	}
	err := s.mirror.Apply(func(wfs []models.Workflow) []models.Workflow {
		return append([]models.Workflow{wf}, wfs...)
	})
	s.notify(models.CollectionWorkflows, "created", wf.ID)
	return wf, err
}

// Toggle flips a workflow's active flag.
func (s *WorkflowService) Toggle(id string) error {
	err := s.apply(id, func(w *models.Workflow) {
		w.Active = !w.Active
	})
	s.notify(models.CollectionWorkflows, "updated", id)
	return err
}

// MarkRun stamps the last-run label.
func (s *WorkflowService) MarkRun(id string, at time.Time) error {
	err := s.apply(id, func(w *models.Workflow) {
		w.LastRun = at.Format("2006-01-02 15:04")
	})
	s.notify(models.CollectionWorkflows, "updated", id)
	return err
}

// Remove deletes a workflow.
func (s *WorkflowService) Remove(id string) error {
	err := s.mirror.Apply(func(wfs []models.Workflow) []models.Workflow {
		kept := wfs[:0]
		for _, w := range wfs {
			if w.ID != id {
				kept = append(kept, w)
			}
		}
		return kept
	})
	s.notify(models.CollectionWorkflows, "deleted", id)
	return err
}

func (s *WorkflowService) apply(id string, fn func(*models.Workflow)) error {
	return s.mirror.Apply(func(wfs []models.Workflow) []models.Workflow {
		for i := range wfs {
			if wfs[i].ID == id {
				fn(&wfs[i])
			}
		}
		return wfs
	})
}
