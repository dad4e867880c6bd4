// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes dashboard tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/opdeck/opdeck/internal/assist"
	"github.com/opdeck/opdeck/internal/dashboard"
	"github.com/opdeck/opdeck/internal/index"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/modules"
)

// Server wraps the MCP server with dashboard tools.
type Server struct {
	mcp      *server.MCPServer
	registry *modules.Registry
	agg      *dashboard.Aggregator
	idx      index.NoteIndex
	brain    assist.Client
}

// New creates a new MCP server with all dashboard tools registered.
// idx may be nil when the search index is disabled.
func New(registry *modules.Registry, agg *dashboard.Aggregator, idx index.NoteIndex, brain assist.Client) *Server {
	s := &Server{registry: registry, agg: agg, idx: idx, brain: brain}

	s.mcp = server.NewMCPServer(
		"opdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Cross-module dashboard summary: task, habit, and goal counts plus recent items."),
	), s.getSummary)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks. Pass status=active or status=completed to filter."),
		mcp.WithString("status", mcp.Description("Optional filter: active or completed")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a task. Priority is one of Low, Medium, High, Urgent (default Medium)."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title, starting with a verb")),
		mcp.WithString("priority", mcp.Description("Task priority")),
		mcp.WithString("due_date", mcp.Description("Due date, YYYY-MM-DD")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Toggle a task's completed flag."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through notes content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note record id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Content is Markdown; use [[id]] wikilinks to reference "+
			"other notes and inline #tags for categorization. Read the record contract first via "+
			"the get_record_contract tool or the opdeck://record-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag list")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("daily_brief",
		mcp.WithDescription("Generate a short motivating brief from the pending task list."),
	), s.dailyBrief)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the canonical record format contract. "+
			"Call this before creating records to ensure correct structure."),
	), s.getRecordContract)

	// Resource: record format contract.
	s.mcp.AddResource(
		mcp.NewResource("opdeck://record-format", "Record Format Contract",
			mcp.WithResourceDescription("Canonical record shapes for every collection."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.agg.Summary(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := ""
	if v, err := req.RequireString("status"); err == nil {
		status = v
	}
	var tasks []models.Task
	for _, t := range s.registry.Tasks.List() {
		switch status {
		case "active":
			if t.Completed {
				continue
			}
		case "completed":
			if !t.Completed {
				continue
			}
		}
		tasks = append(tasks, t)
	}
	out, _ := json.MarshalIndent(tasks, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	priority := models.Priority("")
	if v, perr := req.RequireString("priority"); perr == nil {
		priority = models.Priority(v)
	}
	dueDate := ""
	if v, derr := req.RequireString("due_date"); derr == nil {
		dueDate = v
	}
	task, err := s.registry.Tasks.Add(title, priority, dueDate, "", nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created task %s: %s", task.ID, task.Title)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.registry.Tasks.Get(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", id)), nil
	}
	if err := s.registry.Tasks.Toggle(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("toggled task %s", id)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.idx == nil {
		return mcp.NewToolResultError("search index disabled"), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, ok := s.registry.Notes.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tags []string
	if raw, terr := req.RequireString("tags"); terr == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	note, err := s.registry.Notes.Create(title, content, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %s: %s", note.ID, note.Title)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.idx == nil {
		return mcp.NewToolResultError("search index disabled"), nil
	}
	bl, err := s.idx.Backlinks(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) dailyBrief(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var pending []models.Task
	for _, t := range s.registry.Tasks.List() {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	return mcp.NewToolResultText(s.brain.DailyBrief(ctx, pending)), nil
}

func (s *Server) getRecordContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "opdeck://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
