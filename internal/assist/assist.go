// Package assist is the boundary to the generative collaborator. Every
// operation degrades in-band: when the service is unreachable or no key
// is configured, callers get a labeled fallback value instead of an
// error, so the rest of the dashboard never blocks on the network.
package assist

import (
	"context"

	"github.com/opdeck/opdeck/internal/models"
)

// TaskSuggestion is one generated task proposal.
type TaskSuggestion struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
}

// SyllabusModule is one generated course unit.
type SyllabusModule struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Syllabus is a generated course outline.
type Syllabus struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  models.Difficulty `json:"difficulty"`
	Modules     []SyllabusModule  `json:"modules"`
}

// ChatReply carries the assistant's answer plus any grounding citations.
type ChatReply struct {
	Content string            `json:"content"`
	Sources []models.Citation `json:"sources,omitempty"`
}

// Client is the generative collaborator surface consumed by the API and
// MCP layers.
type Client interface {
	// DailyBrief writes a short morning summary from the pending tasks.
	DailyBrief(ctx context.Context, tasks []models.Task) string
	// SuggestTasks breaks a high-level goal into actionable tasks.
	SuggestTasks(ctx context.Context, goal string) []TaskSuggestion
	// SuggestSubtasks proposes subtasks for one task.
	SuggestSubtasks(ctx context.Context, taskTitle string) []string
	// SuggestHabits proposes daily habits for a focus area.
	SuggestHabits(ctx context.Context, focusArea string) []string
	// SuggestMilestones proposes checkpoints for a goal.
	SuggestMilestones(ctx context.Context, goalTitle string) []string
	// Summarize reduces text to key takeaways.
	Summarize(ctx context.Context, text string) []string
	// GenerateSyllabus outlines a course on a topic.
	GenerateSyllabus(ctx context.Context, topic string) (Syllabus, bool)
	// Chat answers a message given recent conversation history.
	Chat(ctx context.Context, history []models.ChatMessage, message string) ChatReply
	// Enabled reports whether a live backend is configured.
	Enabled() bool
}

// Disabled is the no-key fallback client. Its responses mirror what a
// live backend would shape, labeled so the UI can tell them apart.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) DailyBrief(context.Context, []models.Task) string {
	return "System: intelligence module unavailable. Configure an API key to enable briefs."
}

func (Disabled) SuggestTasks(_ context.Context, goal string) []TaskSuggestion {
	return []TaskSuggestion{
		{Title: "Define clear objectives for: " + goal, Priority: models.PriorityHigh},
		{Title: "Break the goal down into steps", Priority: models.PriorityMedium},
	}
}

func (Disabled) SuggestSubtasks(context.Context, string) []string {
	return []string{"Plan details", "Execute"}
}

func (Disabled) SuggestHabits(context.Context, string) []string {
	return []string{"Drink water", "Read 10 pages"}
}

func (Disabled) SuggestMilestones(context.Context, string) []string {
	return []string{"Milestone 1", "Milestone 2"}
}

func (Disabled) Summarize(context.Context, string) []string {
	return []string{"Summary unavailable"}
}

func (Disabled) GenerateSyllabus(context.Context, string) (Syllabus, bool) {
	return Syllabus{}, false
}

func (Disabled) Chat(context.Context, []models.ChatMessage, string) ChatReply {
	return ChatReply{Content: "Connection error: no assistant backend configured."}
}
