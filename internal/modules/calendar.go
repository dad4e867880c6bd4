package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// CalendarService manages date-keyed events.
type CalendarService struct {
	mirror *mirror.Mirror[models.CalendarEvent]
	notify Notifier
}

func newCalendarService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *CalendarService {
	col := storage.NewCollection[models.CalendarEvent](store, models.CollectionEvents)
	return &CalendarService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.CalendarEvent](onErr)),
		notify: notify,
	}
}

func seedEvents() []models.CalendarEvent {
	return []models.CalendarEvent{
		{ID: "e1", Title: "Q4 Planning", Date: "2025-11-20", Type: models.EventMeeting, Source: models.SourceLocal},
		{ID: "e2", Title: "Dentist", Date: "2025-11-25", Type: models.EventTask, Source: models.SourceLocal},
	}
}

func (s *CalendarService) init() { s.mirror.Init(seedEvents()) }

// List returns a snapshot of all events.
func (s *CalendarService) List() []models.CalendarEvent { return s.mirror.Snapshot() }

// OnDate returns events for one YYYY-MM-DD day.
func (s *CalendarService) OnDate(date string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range s.mirror.Snapshot() {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	return out
}

// Add creates a locally-sourced event.
func (s *CalendarService) Add(title, date, timeOfDay string, typ models.EventType) (models.CalendarEvent, error) {
	if typ == "" {
		typ = models.EventReminder
	}
	ev := models.CalendarEvent{
		ID:     models.NewID(),
		Title:  title,
		Date:   date,
		Time:   timeOfDay,
		Type:   typ,
		Source: models.SourceLocal,
	}
	err := s.mirror.Apply(func(events []models.CalendarEvent) []models.CalendarEvent {
		return append([]models.CalendarEvent{ev}, events...)
	})
	s.notify(models.CollectionEvents, "created", ev.ID)
	return ev, err
}

// MergeSynced inserts externally-synced events, replacing any prior synced
// set while leaving locally-created events untouched.
func (s *CalendarService) MergeSynced(synced []models.CalendarEvent) error {
	for i := range synced {
		if synced[i].ID == "" {
			synced[i].ID = models.NewID()
		}
		synced[i].Source = models.SourceSynced
	}
	err := s.mirror.Apply(func(events []models.CalendarEvent) []models.CalendarEvent {
		kept := events[:0]
		for _, ev := range events {
			if ev.Source == models.SourceLocal {
				kept = append(kept, ev)
			}
		}
		return append(kept, synced...)
	})
	s.notify(models.CollectionEvents, "updated", "")
	return err
}

// Remove deletes an event.
func (s *CalendarService) Remove(id string) error {
	err := s.mirror.Apply(func(events []models.CalendarEvent) []models.CalendarEvent {
		kept := events[:0]
		for _, ev := range events {
			if ev.ID != id {
				kept = append(kept, ev)
			}
		}
		return kept
	})
	s.notify(models.CollectionEvents, "deleted", id)
	return err
}
