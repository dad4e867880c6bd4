package modules

import (
	"log/slog"
	"time"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// NoteIndexer receives note mutations for search indexing. Index failures
// never block the mutation itself.
type NoteIndexer interface {
	UpsertNote(n models.Note) error
	DeleteNote(id string) error
}

// NoteService manages Markdown notes and keeps the search index in step.
type NoteService struct {
	mirror  *mirror.Mirror[models.Note]
	notify  Notifier
	logger  *slog.Logger
	indexer NoteIndexer
	now     func() time.Time
}

func newNoteService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *NoteService {
	col := storage.NewCollection[models.Note](store, models.CollectionNotes)
	return &NoteService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.Note](onErr)),
		notify: notify,
		logger: logger,
		now:    time.Now,
	}
}

// SetIndexer attaches the search indexer (wired at startup, after the
// index database is opened).
func (s *NoteService) SetIndexer(idx NoteIndexer) { s.indexer = idx }

func seedNotes(now time.Time) []models.Note {
	return []models.Note{
		{ID: "1", Title: "Project Phoenix Ideas",
			Content:      "# Phoenix\n- Focus on scalability\n- Ship the intelligence layer early\n- See [[2]] for budget context",
			Tags:         []string{"Work", "Ideas"}, LastModified: now, LinkedIDs: []string{"2"}},
		{ID: "2", Title: "Meeting Notes: Marketing",
			Content:      "Key takeaways:\n1. Q4 budget increased\n2. Focus on organic growth",
			Tags:         []string{"Work"}, LastModified: now, LinkedIDs: []string{"1"}},
		{ID: "3", Title: "Personal Goals 2025",
			Content:      "- Run a marathon\n- Read 50 books",
			Tags:         []string{"Personal"}, LastModified: now, LinkedIDs: []string{}},
	}
}

func (s *NoteService) init() { s.mirror.Init(seedNotes(s.now())) }

// List returns a snapshot of all notes.
func (s *NoteService) List() []models.Note { return s.mirror.Snapshot() }

// Get returns a single note by id.
func (s *NoteService) Get(id string) (models.Note, bool) { return s.mirror.Find(id) }

// Create adds a note and indexes it.
func (s *NoteService) Create(title, content string, tags []string) (models.Note, error) {
	if tags == nil {
		tags = []string{}
	}
	note := models.Note{
		ID:           models.NewID(),
		Title:        title,
		Content:      content,
		Tags:         tags,
		LastModified: s.now(),
	}
	err := s.mirror.Apply(func(notes []models.Note) []models.Note {
		return append([]models.Note{note}, notes...)
	})
	s.index(note)
	s.notify(models.CollectionNotes, "created", note.ID)
	return note, err
}

// Update replaces a note's content fields and touches its last-modified
// timestamp. Unknown ids are a silent no-op.
func (s *NoteService) Update(id, title, content string, tags []string) error {
	var updated models.Note
	err := s.mirror.Apply(func(notes []models.Note) []models.Note {
		for i := range notes {
			if notes[i].ID != id {
				continue
			}
			notes[i].Title = title
			notes[i].Content = content
			if tags != nil {
				notes[i].Tags = tags
			}
			notes[i].LastModified = s.now()
			updated = notes[i]
		}
		return notes
	})
	if updated.ID != "" {
		s.index(updated)
	}
	s.notify(models.CollectionNotes, "updated", id)
	return err
}

// SetLinks replaces a note's advisory linked-id list. Targets are not
// checked for existence; dangling references are allowed.
func (s *NoteService) SetLinks(id string, linkedIDs []string) error {
	var updated models.Note
	err := s.mirror.Apply(func(notes []models.Note) []models.Note {
		for i := range notes {
			if notes[i].ID == id {
				notes[i].LinkedIDs = linkedIDs
				notes[i].LastModified = s.now()
				updated = notes[i]
			}
		}
		return notes
	})
	if updated.ID != "" {
		s.index(updated)
	}
	s.notify(models.CollectionNotes, "updated", id)
	return err
}

// Remove deletes a note and drops it from the index.
func (s *NoteService) Remove(id string) error {
	err := s.mirror.Apply(func(notes []models.Note) []models.Note {
		kept := notes[:0]
		for _, n := range notes {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		return kept
	})
	if s.indexer != nil {
		if idxErr := s.indexer.DeleteNote(id); idxErr != nil {
			s.logger.Warn("notes: index delete failed", slog.String("id", id), slog.String("error", idxErr.Error()))
		}
	}
	s.notify(models.CollectionNotes, "deleted", id)
	return err
}

func (s *NoteService) index(n models.Note) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.UpsertNote(n); err != nil {
		s.logger.Warn("notes: index upsert failed", slog.String("id", n.ID), slog.String("error", err.Error()))
	}
}
