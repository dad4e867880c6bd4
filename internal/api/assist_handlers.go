package api

import (
	"net/http"

	"github.com/opdeck/opdeck/internal/assist"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/modules"
)

// AssistHandler exposes the generative collaborator. All endpoints
// answer in-band even when the backend is down or unconfigured; the
// fallback values are labeled so clients can tell.
type AssistHandler struct {
	client   assist.Client
	registry *modules.Registry
}

func NewAssistHandler(client assist.Client, registry *modules.Registry) *AssistHandler {
	return &AssistHandler{client: client, registry: registry}
}

// DailyBrief handles GET /api/assist/brief.
func (h *AssistHandler) DailyBrief(w http.ResponseWriter, r *http.Request) {
	var pending []models.Task
	for _, t := range h.registry.Tasks.List() {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	brief := h.client.DailyBrief(r.Context(), pending)
	writeJSON(w, http.StatusOK, map[string]string{"brief": brief})
}

// SuggestTasks handles POST /api/assist/tasks.
func (h *AssistHandler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal string `json:"goal"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Goal == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("goal is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": h.client.SuggestTasks(r.Context(), req.Goal),
	})
}

// SuggestSubtasks handles POST /api/assist/subtasks.
func (h *AssistHandler) SuggestSubtasks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": h.client.SuggestSubtasks(r.Context(), req.Title),
	})
}

// SuggestHabits handles POST /api/assist/habits.
func (h *AssistHandler) SuggestHabits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FocusArea string `json:"focus_area"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": h.client.SuggestHabits(r.Context(), req.FocusArea),
	})
}

// SuggestMilestones handles POST /api/assist/milestones.
func (h *AssistHandler) SuggestMilestones(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal string `json:"goal"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Goal == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("goal is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": h.client.SuggestMilestones(r.Context(), req.Goal),
	})
}

// Summarize handles POST /api/assist/summarize.
func (h *AssistHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"takeaways": h.client.Summarize(r.Context(), req.Text),
	})
}

// Syllabus handles POST /api/assist/syllabus.
func (h *AssistHandler) Syllabus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Topic == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("topic is required"))
		return
	}
	syllabus, ok := h.client.GenerateSyllabus(r.Context(), req.Topic)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("syllabus generation unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, syllabus)
}

// ChatHistory handles GET /api/chat.
func (h *AssistHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Chat.History())
}

// Chat handles POST /api/chat: persist the user turn, ask the
// collaborator, persist and return the assistant turn.
func (h *AssistHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		return
	}

	history := h.registry.Chat.History()
	if _, err := h.registry.Chat.Append(models.RoleUser, req.Message, nil); err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	reply := h.client.Chat(r.Context(), history, req.Message)
	msg, err := h.registry.Chat.Append(models.RoleAssistant, reply.Content, reply.Sources)
	writeMutation(w, http.StatusOK, msg, err)
}

// ClearChat handles DELETE /api/chat.
func (h *AssistHandler) ClearChat(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Chat.Clear(); err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
