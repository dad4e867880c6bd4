package index

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/parser"
	"github.com/opdeck/opdeck/internal/storage"
)

// Indexer adapts a NoteIndex to the note service. It derives the link
// set from inline wikilinks plus the note's advisory linked-id list and
// merges inline #tags with the note's own tag list.
type Indexer struct {
	db NoteIndex
}

func NewIndexer(db NoteIndex) *Indexer { return &Indexer{db: db} }

func (ix *Indexer) UpsertNote(n models.Note) error {
	return ix.db.Upsert(rowFor(n), linksFor(n))
}

func (ix *Indexer) DeleteNote(id string) error {
	return ix.db.Delete(id)
}

func rowFor(n models.Note) NoteRow {
	tags := append([]string(nil), n.Tags...)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		seen[t] = struct{}{}
	}
	for _, t := range parser.Tags(n.Content) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return NoteRow{
		ID:        n.ID,
		Title:     n.Title,
		Tags:      tags,
		Body:      n.Content,
		UpdatedAt: n.LastModified,
	}
}

func linksFor(n models.Note) []string {
	links := parser.Links(n.Content)
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		seen[l] = struct{}{}
	}
	for _, id := range n.LinkedIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			links = append(links, id)
		}
	}
	return links
}

// Sync brings the index in line with the persisted notes collection:
// every stored note is reindexed and entries for deleted notes are
// dropped. Individual failures are logged, not fatal.
func Sync(db NoteIndex, store *storage.Store, logger *slog.Logger) error {
	notes := storage.NewCollection[models.Note](store, models.CollectionNotes).Get()

	indexed, err := db.AllIDs()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		live[n.ID] = struct{}{}
		if err := db.Upsert(rowFor(n), linksFor(n)); err != nil {
			logger.Warn("sync: index failed",
				slog.String("id", n.ID), slog.String("error", err.Error()))
		}
	}

	for id := range indexed {
		if _, ok := live[id]; !ok {
			if err := db.Delete(id); err != nil {
				logger.Warn("sync: delete failed",
					slog.String("id", id), slog.String("error", err.Error()))
			}
		}
	}
	return nil
}
