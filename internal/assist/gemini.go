package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/opdeck/opdeck/internal/models"
)

const (
	defaultModel = "gemini-2.5-flash"
	// Cheaper model for short, latency-sensitive generations.
	fastModel = "gemini-2.5-flash-lite"

	maxSummarizeInput = 5000
	chatHistoryWindow = 10
)

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// Gemini is the live collaborator backed by the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini dials the GenAI API. model overrides the default generation
// model when non-empty.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assist: API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("assist: create client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

func (g *Gemini) Enabled() bool { return true }

// generate runs one text completion. jsonMode asks the model for a JSON
// body. Failures are logged and reported via ok=false so callers can
// fall back in-band.
func (g *Gemini) generate(ctx context.Context, model, prompt string, jsonMode bool) (string, bool) {
	var cfg *genai.GenerateContentConfig
	if jsonMode {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		g.logger.Warn("assist: generation failed",
			slog.String("model", model), slog.Any("error", err))
		return "", false
	}
	text := resp.Text()
	if text == "" {
		return "", false
	}
	return text, true
}

// generateJSON decodes a JSON-mode completion into out.
func (g *Gemini) generateJSON(ctx context.Context, model, prompt string, out any) bool {
	text, ok := g.generate(ctx, model, prompt, true)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		g.logger.Warn("assist: malformed model response", slog.Any("error", err))
		return false
	}
	return true
}

func (g *Gemini) DailyBrief(ctx context.Context, tasks []models.Task) string {
	var sb strings.Builder
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", t.Title, t.Priority)
	}
	prompt := fmt.Sprintf(`Generate a concise, motivating morning brief for the user.
Here are their current pending tasks:
%s
Structure the response with a greeting, a "Focus of the Day" based on the most urgent tasks, and a quote about productivity. Keep it under 150 words.`, sb.String())

	text, ok := g.generate(ctx, fastModel, prompt, false)
	if !ok {
		return "System: intelligence module unavailable."
	}
	return text
}

func (g *Gemini) SuggestTasks(ctx context.Context, goal string) []TaskSuggestion {
	prompt := fmt.Sprintf(`The user has a high-level goal: %q.
Break this down into 5 specific, actionable tasks that can be completed in 1-2 hours each.
Start each task with a verb. For each task, assign a priority (Low, Medium, High, Urgent).
Return ONLY a JSON array of objects with keys: "title" and "priority".`, goal)

	var out []TaskSuggestion
	if !g.generateJSON(ctx, g.model, prompt, &out) {
		return nil
	}
	return out
}

func (g *Gemini) SuggestSubtasks(ctx context.Context, taskTitle string) []string {
	prompt := fmt.Sprintf(`The user has a task: %q. Suggest 3-4 subtasks to complete this. Return ONLY a JSON array of strings.`, taskTitle)
	var out []string
	if !g.generateJSON(ctx, fastModel, prompt, &out) {
		return nil
	}
	return out
}

func (g *Gemini) SuggestHabits(ctx context.Context, focusArea string) []string {
	prompt := fmt.Sprintf(`Suggest 4 daily habits that would help someone achieve success in: %q. Keep them short (3-5 words). Return ONLY a JSON array of strings.`, focusArea)
	var out []string
	if !g.generateJSON(ctx, fastModel, prompt, &out) {
		return nil
	}
	return out
}

func (g *Gemini) SuggestMilestones(ctx context.Context, goalTitle string) []string {
	prompt := fmt.Sprintf(`Create 4 key milestones to track progress for the goal: %q.
These should be significant checkpoints, not small tasks.
Return ONLY a JSON array of strings.`, goalTitle)
	var out []string
	if !g.generateJSON(ctx, g.model, prompt, &out) {
		return nil
	}
	return out
}

func (g *Gemini) Summarize(ctx context.Context, text string) []string {
	text = truncate(text, maxSummarizeInput)
	prompt := fmt.Sprintf(`Summarize the following text into 3-5 key takeaways. Return ONLY a JSON array of strings.

Text:
%s`, text)
	var out []string
	if !g.generateJSON(ctx, fastModel, prompt, &out) {
		return []string{"Error summarizing content"}
	}
	return out
}

func (g *Gemini) GenerateSyllabus(ctx context.Context, topic string) (Syllabus, bool) {
	prompt := fmt.Sprintf(`Generate a structured course syllabus for the topic: %q.

Return a JSON object with:
- title (catchy course title)
- description (short description)
- difficulty (Beginner/Intermediate/Advanced)
- modules: array of objects { "title": string, "description": string }

Create about 5-7 modules.`, topic)

	var out Syllabus
	if !g.generateJSON(ctx, g.model, prompt, &out) {
		return Syllabus{}, false
	}
	return out, true
}

func (g *Gemini) Chat(ctx context.Context, history []models.ChatMessage, message string) ChatReply {
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	var sb strings.Builder
	for _, msg := range history {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, msg.Content)
	}
	prompt := fmt.Sprintf(`You are the dashboard copilot. Answer helpfully and concisely.
History:
%s
User: %s`, sb.String(), message)

	text, ok := g.generate(ctx, g.model, prompt, false)
	if !ok {
		return ChatReply{Content: "Error processing request."}
	}
	return ChatReply{Content: text}
}
