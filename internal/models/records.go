// Package models defines the record types persisted by opdeck.
//
// Every record carries a caller-generated string ID unique within its
// collection. Cross-references between records (note links, budget
// categories) are advisory: nothing enforces referential integrity.
package models

import "time"

// Task priorities.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Task recurrence intervals.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "None"
	RecurrenceDaily   Recurrence = "Daily"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
)

// SubTask is a nested checklist entry inside a Task.
type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a to-do item with optional subtasks and recurrence.
type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Completed  bool       `json:"completed"`
	Priority   Priority   `json:"priority"`
	DueDate    string     `json:"due_date,omitempty"` // YYYY-MM-DD
	Recurrence Recurrence `json:"recurrence,omitempty"`
	Tags       []string   `json:"tags"`
	Subtasks   []SubTask  `json:"subtasks,omitempty"`
}

// RecordID implements Identifiable.
func (t Task) RecordID() string { return t.ID }

// SubtaskRatio returns completed and total subtask counts.
func (t Task) SubtaskRatio() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// Habit frequencies.
type Frequency string

const (
	FrequencyDaily  Frequency = "Daily"
	FrequencyWeekly Frequency = "Weekly"
)

// Habit is a recurring practice with a streak counter.
type Habit struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completed_today"`
	Frequency      Frequency `json:"frequency"`
}

func (h Habit) RecordID() string { return h.ID }

// Goal statuses.
type GoalStatus string

const (
	GoalOnTrack GoalStatus = "On Track"
	GoalAtRisk  GoalStatus = "At Risk"
	GoalBehind  GoalStatus = "Behind"
)

// Milestone is a step toward a Goal.
type Milestone struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Goal tracks long-horizon objectives. Progress is stored redundantly and
// recomputed by the owning service whenever milestones change.
type Goal struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Deadline   string      `json:"deadline"` // YYYY-MM-DD
	Progress   int         `json:"progress"` // 0-100
	Status     GoalStatus  `json:"status"`
	Milestones []Milestone `json:"milestones"`
}

func (g Goal) RecordID() string { return g.ID }

// ComputeProgress returns the milestone completion percentage. A goal with
// no milestones reports 0, never a division error.
func (g Goal) ComputeProgress() int {
	total := len(g.Milestones)
	if total == 0 {
		return 0
	}
	done := 0
	for _, m := range g.Milestones {
		if m.Completed {
			done++
		}
	}
	return int(float64(done)/float64(total)*100 + 0.5)
}

// Calendar event kinds and sources.
type EventType string

const (
	EventMeeting  EventType = "Meeting"
	EventTask     EventType = "Task"
	EventReminder EventType = "Reminder"
)

type EventSource string

const (
	SourceLocal  EventSource = "Local"
	SourceSynced EventSource = "Synced"
)

// CalendarEvent is a date-keyed entry; Source distinguishes locally-created
// events from externally-synced ones.
type CalendarEvent struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Date   string      `json:"date"` // YYYY-MM-DD
	Time   string      `json:"time,omitempty"`
	Type   EventType   `json:"type"`
	Source EventSource `json:"source"`
}

func (e CalendarEvent) RecordID() string { return e.ID }

// Note is a Markdown document. LinkedIDs is an advisory list of other note
// ids; dangling references are permitted.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"` // Markdown
	Tags         []string  `json:"tags"`
	LastModified time.Time `json:"last_modified"`
	LinkedIDs    []string  `json:"linked_ids,omitempty"`
}

func (n Note) RecordID() string { return n.ID }

// Transaction kinds.
type TransactionType string

const (
	TxnExpense TransactionType = "expense"
	TxnIncome  TransactionType = "income"
)

// Transaction is a single financial entry.
type Transaction struct {
	ID       string          `json:"id"`
	Merchant string          `json:"merchant"`
	Amount   float64         `json:"amount"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
}

func (t Transaction) RecordID() string { return t.ID }

// Budget is a per-category spending limit. Spent is stored redundantly and
// rolled up from transactions by the finance service.
type Budget struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Spent    float64 `json:"spent"`
}

func (b Budget) RecordID() string { return b.ID }

// Course statuses and difficulties.
type CourseStatus string

const (
	CourseActive    CourseStatus = "Active"
	CourseCompleted CourseStatus = "Completed"
	CourseArchived  CourseStatus = "Archived"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// CourseModule is one unit of a Course.
type CourseModule struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Course is a learning track; Progress mirrors module completion.
type Course struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Progress    int            `json:"progress"` // 0-100
	Modules     []CourseModule `json:"modules"`
	Status      CourseStatus   `json:"status"`
	Difficulty  Difficulty     `json:"difficulty"`
}

func (c Course) RecordID() string { return c.ID }

// ComputeProgress returns the module completion percentage, flooring the
// denominator at 1.
func (c Course) ComputeProgress() int {
	total := len(c.Modules)
	if total == 0 {
		return 0
	}
	done := 0
	for _, m := range c.Modules {
		if m.Completed {
			done++
		}
	}
	return int(float64(done)/float64(total)*100 + 0.5)
}

// Media item kinds and statuses.
type MediaType string

const (
	MediaVideo   MediaType = "Video"
	MediaArticle MediaType = "Article"
	MediaPodcast MediaType = "Podcast"
	MediaBook    MediaType = "Book"
)

type MediaStatus string

const (
	MediaToConsume  MediaStatus = "To Consume"
	MediaInProgress MediaStatus = "In Progress"
	MediaDone       MediaStatus = "Done"
)

// MediaItem is a curated piece of content with optional AI-derived takeaways.
type MediaItem struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Type      MediaType   `json:"type"`
	URL       string      `json:"url,omitempty"`
	Status    MediaStatus `json:"status"`
	Rating    int         `json:"rating,omitempty"` // 1-5
	Notes     string      `json:"notes"`
	Takeaways []string    `json:"takeaways,omitempty"`
}

func (m MediaItem) RecordID() string { return m.ID }

// Workflow step kinds.
type StepType string

const (
	StepTrigger StepType = "Trigger"
	StepAction  StepType = "Action"
	StepLogic   StepType = "Logic"
)

// WorkflowStep is one node in an automation sequence. Config holds only
// keys recognized for the step type; unrecognized keys are dropped on write.
type WorkflowStep struct {
	ID     string            `json:"id"`
	Type   StepType          `json:"type"`
	Label  string            `json:"label"`
	Config map[string]string `json:"config"`
}

// Workflow is an ordered automation sequence.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Active      bool           `json:"active"`
	LastRun     string         `json:"last_run,omitempty"`
	Steps       []WorkflowStep `json:"steps"`
}

func (w Workflow) RecordID() string { return w.ID }

// Chat roles.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Citation is a grounding source attached to an assistant message.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ChatMessage is a single conversation turn.
type ChatMessage struct {
	ID        string     `json:"id"`
	Role      ChatRole   `json:"role"`
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp"` // Unix millis
	Sources   []Citation `json:"sources,omitempty"`
}

func (m ChatMessage) RecordID() string { return m.ID }
