package models

// Collection keys. Each names an independently persisted JSON array in the
// record store.
const (
	CollectionTasks        = "tasks"
	CollectionHabits       = "habits"
	CollectionGoals        = "goals"
	CollectionEvents       = "calendar_events"
	CollectionNotes        = "notes"
	CollectionTransactions = "transactions"
	CollectionBudgets      = "budgets"
	CollectionHealth       = "health_metrics"
	CollectionCourses      = "courses"
	CollectionMedia        = "media_items"
	CollectionWorkflows    = "workflows"
	CollectionChat         = "chat_history"
)

// CollectionKeys lists every record collection in a stable order, used by
// export/import and usage reporting.
func CollectionKeys() []string {
	return []string{
		CollectionTasks,
		CollectionHabits,
		CollectionGoals,
		CollectionEvents,
		CollectionNotes,
		CollectionTransactions,
		CollectionBudgets,
		CollectionHealth,
		CollectionCourses,
		CollectionMedia,
		CollectionWorkflows,
		CollectionChat,
	}
}

// KnownCollection reports whether key names a record collection.
func KnownCollection(key string) bool {
	for _, k := range CollectionKeys() {
		if k == key {
			return true
		}
	}
	return false
}
