package modules

import (
	"log/slog"
	"time"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// ChatService keeps the assistant conversation transcript.
type ChatService struct {
	mirror *mirror.Mirror[models.ChatMessage]
	notify Notifier
}

func newChatService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *ChatService {
	col := storage.NewCollection[models.ChatMessage](store, models.CollectionChat)
	return &ChatService{
		mirror: mirror.New(col, logger, mirror.WithCommitErrorHandler[models.ChatMessage](onErr)),
		notify: notify,
	}
}

func (s *ChatService) init() { s.mirror.Init(nil) }

// History returns the transcript oldest-first.
func (s *ChatService) History() []models.ChatMessage { return s.mirror.Snapshot() }

// Append adds a message to the end of the transcript.
func (s *ChatService) Append(role models.ChatRole, content string, sources []models.Citation) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        models.NewID(),
		Role:      role,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now().UnixMilli(),
	}
	err := s.mirror.Apply(func(msgs []models.ChatMessage) []models.ChatMessage {
		return append(msgs, msg)
	})
	s.notify(models.CollectionChat, "created", msg.ID)
	return msg, err
}

// Clear wipes the transcript.
func (s *ChatService) Clear() error {
	err := s.mirror.Apply(func([]models.ChatMessage) []models.ChatMessage {
		return nil
	})
	s.notify(models.CollectionChat, "deleted", "")
	return err
}
