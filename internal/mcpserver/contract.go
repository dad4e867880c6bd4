package mcpserver

// RecordFormatContract describes the record shapes LLM consumers should
// follow when creating or updating records through the raw collection
// surface.
const RecordFormatContract = `# opdeck Record Format Contract

Every record is a JSON object inside a named collection. Collections are
stored as whole JSON arrays; records are identified by a caller-generated
string ` + "`" + `id` + "`" + ` that is unique within its collection.

## Common rules

1. **` + "`" + `id` + "`" + ` is required** on every record. New records get a fresh
   timestamp-derived id; never reuse an existing one.
2. **Field names are snake_case** (e.g. ` + "`" + `due_date` + "`" + `, ` + "`" + `completed_today` + "`" + `).
3. **Cross-references are advisory.** A note's ` + "`" + `linked_ids` + "`" + ` list or a
   ` + "`" + `[[id]]` + "`" + ` wikilink in its content names another record but nothing
   enforces that the target exists.
4. **Derived fields are stored.** Goal ` + "`" + `progress` + "`" + ` and course ` + "`" + `progress` + "`" + `
   are recomputed by the owning module on every mutation; do not invent
   values for them.

## Collections

- ` + "`" + `tasks` + "`" + `: title, completed, priority (Low/Medium/High/Urgent), due_date,
  recurrence, tags, subtasks [{id, title, completed}]
- ` + "`" + `habits` + "`" + `: name, streak, completed_today, frequency
- ` + "`" + `goals` + "`" + `: title, deadline, status (On Track/At Risk/Behind),
  progress, milestones [{id, title, completed}]
- ` + "`" + `calendar_events` + "`" + `: title, date (YYYY-MM-DD), time, type, source (Local/Synced)
- ` + "`" + `notes` + "`" + `: title, content (Markdown with [[id]] wikilinks and #tags),
  tags, linked_ids, last_modified
- ` + "`" + `transactions` + "`" + `: merchant, amount, date, category, type (expense/income)
- ` + "`" + `budgets` + "`" + `: category, limit, spent (rollup, module-owned)
- ` + "`" + `health_metrics` + "`" + `: type (Sleep/Water/Steps/Weight/Mood), value
  ({kind: numeric, value, unit} or {kind: categorical, label}), date, timestamp
- ` + "`" + `courses` + "`" + `: title, description, difficulty, status, progress,
  modules [{id, title, description, completed}]
- ` + "`" + `media_items` + "`" + `: title, type, url, status (To Consume/In Progress/Done),
  rating (1-5), notes, takeaways
- ` + "`" + `workflows` + "`" + `: name, description, active, last_run,
  steps [{id, type (Trigger/Action/Logic), label, config}]
- ` + "`" + `chat_history` + "`" + `: role (user/assistant), content, sources, timestamp

## Health metric values

Numeric: ` + "`" + `{"kind": "numeric", "value": 7.5, "unit": "hrs"}` + "`" + `
Categorical: ` + "`" + `{"kind": "categorical", "label": "Good"}` + "`" + `
Bare numbers and bare strings are accepted on read for backward
compatibility but new writes should use the tagged form.
`
