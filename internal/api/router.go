package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, ah *AssistHandler, assets *AssetHandler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Raw collection access: the generic persistence surface.
	r.Route("/collections/{collection}", func(r chi.Router) {
		r.Get("/", h.GetCollection)
		r.Put("/", h.PutCollection)
		r.Post("/", h.PostRecord)
		r.Patch("/{id}", h.PatchRecord)
		r.Delete("/{id}", h.DeleteRecord)
	})

	// Typed module operations.
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Post("/{id}/toggle", h.ToggleTask)
		r.Put("/{id}/subtasks", h.SetSubtasks)
		r.Post("/{id}/subtasks/{subtaskID}/toggle", h.ToggleSubtask)
		r.Delete("/{id}", h.DeleteTask)
	})

	r.Route("/habits", func(r chi.Router) {
		r.Get("/", h.ListHabits)
		r.Post("/", h.CreateHabit)
		r.Post("/{id}/toggle", h.ToggleHabit)
		r.Post("/reset", h.ResetHabits)
		r.Delete("/{id}", h.DeleteHabit)
	})

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", h.ListGoals)
		r.Post("/", h.CreateGoal)
		r.Post("/{id}/milestones", h.AddMilestones)
		r.Post("/{id}/milestones/{milestoneID}/toggle", h.ToggleMilestone)
		r.Put("/{id}/status", h.SetGoalStatus)
		r.Delete("/{id}", h.DeleteGoal)
	})

	r.Route("/calendar", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Put("/synced", h.MergeSyncedEvents)
		r.Delete("/{id}", h.DeleteEvent)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Put("/{id}/links", h.SetNoteLinks)
		r.Delete("/{id}", h.DeleteNote)
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/", h.CreateTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
	})

	r.Route("/budgets", func(r chi.Router) {
		r.Get("/", h.ListBudgets)
		r.Put("/", h.SetBudget)
	})

	r.Route("/health-metrics", func(r chi.Router) {
		r.Get("/", h.ListMetrics)
		r.Post("/", h.LogMetric)
		r.Delete("/{id}", h.DeleteMetric)
	})

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Post("/", h.CreateCourse)
		r.Post("/{id}/modules/{moduleID}/toggle", h.ToggleCourseModule)
		r.Put("/{id}/status", h.SetCourseStatus)
		r.Delete("/{id}", h.DeleteCourse)
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.Post("/", h.CreateMedia)
		r.Patch("/{id}", h.UpdateMedia)
		r.Delete("/{id}", h.DeleteMedia)
	})

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", h.ListWorkflows)
		r.Post("/", h.CreateWorkflow)
		r.Post("/{id}/toggle", h.ToggleWorkflow)
		r.Post("/{id}/run", h.RunWorkflow)
		r.Delete("/{id}", h.DeleteWorkflow)
	})

	// Aggregation, search, graph.
	r.Get("/summary", h.Summary)
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/backlinks/{id}", h.Backlinks)

	// Backup, usage, settings.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Delete("/data", h.ClearData)
	r.Get("/usage", h.Usage)
	r.Get("/settings", h.GetSettings)
	r.Patch("/settings", h.PatchSettings)

	// Collaborator.
	if ah != nil {
		r.Route("/assist", func(r chi.Router) {
			r.Get("/brief", ah.DailyBrief)
			r.Post("/tasks", ah.SuggestTasks)
			r.Post("/subtasks", ah.SuggestSubtasks)
			r.Post("/habits", ah.SuggestHabits)
			r.Post("/milestones", ah.SuggestMilestones)
			r.Post("/summarize", ah.Summarize)
			r.Post("/syllabus", ah.Syllabus)
		})
		r.Get("/chat", ah.ChatHistory)
		r.Post("/chat", ah.Chat)
		r.Delete("/chat", ah.ClearChat)
	}

	// Asset upload (auth-protected; serving is mounted outside /api).
	if assets != nil {
		r.Post("/assets", assets.Upload)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
