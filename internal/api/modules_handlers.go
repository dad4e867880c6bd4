package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opdeck/opdeck/internal/models"
)

// Typed module endpoints. These go through the feature services, so
// derived fields (goal progress, subtask ratios, budget rollups) are
// recomputed at mutation time and seeds apply on first run.

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Tasks.List())
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string            `json:"title"`
		Priority   models.Priority   `json:"priority"`
		DueDate    string            `json:"due_date"`
		Recurrence models.Recurrence `json:"recurrence"`
		Tags       []string          `json:"tags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	task, err := h.registry.Tasks.Add(req.Title, req.Priority, req.DueDate, req.Recurrence, req.Tags)
	writeMutation(w, http.StatusCreated, task, err)
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.registry.Tasks.Toggle(id)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) SetSubtasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Titles []string `json:"titles"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Tasks.SetSubtasks(id, req.Titles)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	subID := chi.URLParam(r, "subtaskID")
	err := h.registry.Tasks.ToggleSubtask(taskID, subID)
	writeMutation(w, http.StatusOK, map[string]string{"id": taskID}, err)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Tasks.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Habits.List())
}

func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string           `json:"name"`
		Frequency models.Frequency `json:"frequency"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	habit, err := h.registry.Habits.Add(req.Name, req.Frequency)
	writeMutation(w, http.StatusCreated, habit, err)
}

func (h *Handler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.registry.Habits.Toggle(id)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) ResetHabits(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Habits.ResetDay()
	writeMutation(w, http.StatusOK, h.registry.Habits.List(), err)
}

func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Habits.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Goals.List())
}

func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Deadline string `json:"deadline"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	goal, err := h.registry.Goals.Add(req.Title, req.Deadline)
	writeMutation(w, http.StatusCreated, goal, err)
}

func (h *Handler) AddMilestones(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Titles []string `json:"titles"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Goals.AddMilestones(id, req.Titles)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "id")
	milestoneID := chi.URLParam(r, "milestoneID")
	err := h.registry.Goals.ToggleMilestone(goalID, milestoneID)
	writeMutation(w, http.StatusOK, map[string]string{"id": goalID}, err)
}

func (h *Handler) SetGoalStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status models.GoalStatus `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Goals.SetStatus(id, req.Status)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Goals.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if date := r.URL.Query().Get("date"); date != "" {
		writeJSON(w, http.StatusOK, h.registry.Calendar.OnDate(date))
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Calendar.List())
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string           `json:"title"`
		Date  string           `json:"date"`
		Time  string           `json:"time"`
		Type  models.EventType `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" || req.Date == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title and date are required"))
		return
	}
	event, err := h.registry.Calendar.Add(req.Title, req.Date, req.Time, req.Type)
	writeMutation(w, http.StatusCreated, event, err)
}

// MergeSyncedEvents replaces the synced subset of the calendar while
// leaving locally created events alone.
func (h *Handler) MergeSyncedEvents(w http.ResponseWriter, r *http.Request) {
	var events []models.CalendarEvent
	if !decodeBody(w, r, &events) {
		return
	}
	err := h.registry.Calendar.MergeSynced(events)
	writeMutation(w, http.StatusOK, h.registry.Calendar.List(), err)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Calendar.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Notes.List())
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	note, err := h.registry.Notes.Create(req.Title, req.Content, req.Tags)
	writeMutation(w, http.StatusCreated, note, err)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, ok := h.registry.Notes.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Notes.Update(id, req.Title, req.Content, req.Tags)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) SetNoteLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		LinkedIDs []string `json:"linked_ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Notes.SetLinks(id, req.LinkedIDs)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Notes.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": h.registry.Finance.Transactions(),
		"balance":      h.registry.Finance.Balance(),
	})
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Merchant string                 `json:"merchant"`
		Amount   float64                `json:"amount"`
		Date     string                 `json:"date"`
		Category string                 `json:"category"`
		Type     models.TransactionType `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Merchant == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("merchant is required"))
		return
	}
	txn, err := h.registry.Finance.AddTransaction(req.Merchant, req.Amount, req.Date, req.Category, req.Type)
	writeMutation(w, http.StatusCreated, txn, err)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Finance.RemoveTransaction(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Finance.Budgets())
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string  `json:"category"`
		Limit    float64 `json:"limit"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category is required"))
		return
	}
	err := h.registry.Finance.SetBudget(req.Category, req.Limit)
	writeMutation(w, http.StatusOK, h.registry.Finance.Budgets(), err)
}

func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	if typ := r.URL.Query().Get("type"); typ != "" {
		metric, ok := h.registry.Health.Latest(models.MetricType(typ))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody("no metrics of that type"))
			return
		}
		writeJSON(w, http.StatusOK, metric)
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Health.List())
}

func (h *Handler) LogMetric(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  models.MetricType  `json:"type"`
		Value models.MetricValue `json:"value"`
		Date  string             `json:"date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("type is required"))
		return
	}
	metric, err := h.registry.Health.Log(req.Type, req.Value, req.Date)
	writeMutation(w, http.StatusCreated, metric, err)
}

func (h *Handler) DeleteMetric(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Health.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Learn.List())
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	if !decodeBody(w, r, &course) {
		return
	}
	if course.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	created, err := h.registry.Learn.Add(course)
	writeMutation(w, http.StatusCreated, created, err)
}

func (h *Handler) ToggleCourseModule(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")
	moduleID := chi.URLParam(r, "moduleID")
	err := h.registry.Learn.ToggleModule(courseID, moduleID)
	writeMutation(w, http.StatusOK, map[string]string{"id": courseID}, err)
}

func (h *Handler) SetCourseStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status models.CourseStatus `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.registry.Learn.SetStatus(id, req.Status)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Learn.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Media.List())
}

func (h *Handler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string           `json:"title"`
		Type  models.MediaType `json:"type"`
		URL   string           `json:"url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	item, err := h.registry.Media.Add(req.Title, req.Type, req.URL)
	writeMutation(w, http.StatusCreated, item, err)
}

func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status    *models.MediaStatus `json:"status"`
		Rating    *int                `json:"rating"`
		Notes     *string             `json:"notes"`
		Takeaways []string            `json:"takeaways"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Status != nil {
		err = h.registry.Media.SetStatus(id, *req.Status)
	}
	if err == nil && req.Rating != nil {
		err = h.registry.Media.Rate(id, *req.Rating)
	}
	if err == nil && req.Notes != nil {
		err = h.registry.Media.SetNotes(id, *req.Notes)
	}
	if err == nil && req.Takeaways != nil {
		err = h.registry.Media.SetTakeaways(id, req.Takeaways)
	}
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Media.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Workflows.List())
}

func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string                `json:"name"`
		Description string                `json:"description"`
		Steps       []models.WorkflowStep `json:"steps"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	wf, err := h.registry.Workflows.Add(req.Name, req.Description, req.Steps)
	if err != nil && wf.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeMutation(w, http.StatusCreated, wf, err)
}

func (h *Handler) ToggleWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.registry.Workflows.Toggle(id)
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.registry.Workflows.MarkRun(id, time.Now())
	writeMutation(w, http.StatusOK, map[string]string{"id": id}, err)
}

func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	err := h.registry.Workflows.Remove(chi.URLParam(r, "id"))
	if err != nil {
		writeMutation(w, 0, nil, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
