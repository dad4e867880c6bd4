package modules

import (
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

func TestChatAppendsOldestFirst(t *testing.T) {
	_, r := testRegistry(t)

	_, _ = r.Chat.Append(models.RoleUser, "What's on today?", nil)
	_, _ = r.Chat.Append(models.RoleAssistant, "Three tasks and one meeting.", []models.Citation{
		{URI: "https://example.com", Title: "source"},
	})

	history := r.Chat.History()
	if len(history) != 2 {
		t.Fatalf("history = %d messages, want 2", len(history))
	}
	if history[0].Role != models.RoleUser || history[1].Role != models.RoleAssistant {
		t.Errorf("history order = %q then %q", history[0].Role, history[1].Role)
	}
	if history[0].ID == "" || history[0].Timestamp == 0 {
		t.Error("message missing id or timestamp")
	}
	if len(history[1].Sources) != 1 {
		t.Errorf("sources = %v", history[1].Sources)
	}
}

func TestChatPersistsUnderChatCollection(t *testing.T) {
	provider, r := testRegistry(t)
	r.Init()

	if _, err := r.Chat.Append(models.RoleUser, "hello", nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := provider.Get(models.CollectionChat)
	if err != nil {
		t.Fatalf("provider.Get(%s): %v", models.CollectionChat, err)
	}
	if string(data) == "[]" {
		t.Error("appended message not persisted under the chat collection key")
	}
}

func TestChatClear(t *testing.T) {
	_, r := testRegistry(t)
	_, _ = r.Chat.Append(models.RoleUser, "hello", nil)

	if err := r.Chat.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := r.Chat.History(); len(got) != 0 {
		t.Errorf("history after clear = %d messages", len(got))
	}
}
