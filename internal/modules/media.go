package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// MediaService manages the curated media queue.
type MediaService struct {
	mirror *mirror.Mirror[models.MediaItem]
	notify Notifier
}

func newMediaService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *MediaService {
	col := storage.NewCollection[models.MediaItem](store, models.CollectionMedia)
	return &MediaService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.MediaItem](onErr)),
		notify: notify,
	}
}

func seedMedia() []models.MediaItem {
	return []models.MediaItem{
		{ID: "1", Title: "The Future of AI Agents", Type: models.MediaArticle, Status: models.MediaDone,
			Rating: 5, URL: "https://example.com",
			Notes:     "Key point: Agents will replace traditional apps.",
			Takeaways: []string{"Agents reduce friction", "Context is king", "Multi-modal input is standard"}},
		{ID: "2", Title: "Tech Conference Keynote", Type: models.MediaVideo, Status: models.MediaToConsume,
			URL: "https://example.com/video"},
	}
}

func (s *MediaService) init() { s.mirror.Init(seedMedia()) }

// List returns a snapshot of all media items.
func (s *MediaService) List() []models.MediaItem { return s.mirror.Snapshot() }

// Get returns a single item by id.
func (s *MediaService) Get(id string) (models.MediaItem, bool) { return s.mirror.Find(id) }

// Add queues a new item in To Consume status.
func (s *MediaService) Add(title string, typ models.MediaType, url string) (models.MediaItem, error) {
	item := models.MediaItem{
		ID:     models.NewID(),
		Title:  title,
		Type:   typ,
		URL:    url,
		Status: models.MediaToConsume,
	}
	err := s.mirror.Apply(func(items []models.MediaItem) []models.MediaItem {
		return append([]models.MediaItem{item}, items...)
	})
	s.notify(models.CollectionMedia, "created", item.ID)
	return item, err
}

// SetStatus moves an item through the consumption pipeline.
func (s *MediaService) SetStatus(id string, status models.MediaStatus) error {
	err := s.apply(id, func(m *models.MediaItem) {
		m.Status = status
	})
	s.notify(models.CollectionMedia, "updated", id)
	return err
}

// Rate sets a 1-5 rating.
func (s *MediaService) Rate(id string, rating int) error {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	err := s.apply(id, func(m *models.MediaItem) {
		m.Rating = rating
	})
	s.notify(models.CollectionMedia, "updated", id)
	return err
}

// SetNotes replaces an item's free-form notes.
func (s *MediaService) SetNotes(id, notes string) error {
	err := s.apply(id, func(m *models.MediaItem) {
		m.Notes = notes
	})
	s.notify(models.CollectionMedia, "updated", id)
	return err
}

// SetTakeaways stores AI-derived takeaways on an item.
func (s *MediaService) SetTakeaways(id string, takeaways []string) error {
	err := s.apply(id, func(m *models.MediaItem) {
		m.Takeaways = takeaways
	})
	s.notify(models.CollectionMedia, "updated", id)
	return err
}

// Remove deletes an item.
func (s *MediaService) Remove(id string) error {
	err := s.mirror.Apply(func(items []models.MediaItem) []models.MediaItem {
		kept := items[:0]
		for _, m := range items {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		return kept
	})
	s.notify(models.CollectionMedia, "deleted", id)
	return err
}

func (s *MediaService) apply(id string, fn func(*models.MediaItem)) error {
	return s.mirror.Apply(func(items []models.MediaItem) []models.MediaItem {
		for i := range items {
			if items[i].ID == id {
				fn(&items[i])
			}
		}
		return items
	})
}
