package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opdeck/opdeck/internal/assist"
	"github.com/opdeck/opdeck/internal/backup"
	"github.com/opdeck/opdeck/internal/dashboard"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/modules"
	"github.com/opdeck/opdeck/internal/settings"
	"github.com/opdeck/opdeck/internal/storage"
)

// testEnv wires an in-memory store, all services, and the router. The
// search index is left nil; its endpoints answer 503.
func testEnv(t *testing.T, authToken string) (*storage.Memory, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := storage.NewMemory(0)
	store, err := storage.New(provider, logger)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	registry := modules.NewRegistry(store, logger, nil, nil)
	h := NewHandler(store, registry,
		dashboard.New(store, 3),
		backup.New(store, logger),
		settings.New(store, logger),
		nil)
	ah := NewAssistHandler(assist.Disabled{}, registry)

	enabled := authToken != ""
	return provider, NewRouter(h, ah, nil, enabled, authToken, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCollectionCRUD(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/collections/tasks", map[string]any{
		"id": "1", "title": "raw record", "tags": []string{},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("post = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/collections/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("collection response missing ETag")
	}
	var got struct {
		Records []json.RawMessage `json:"records"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(got.Records))
	}

	w = do(t, router, http.MethodPatch, "/collections/tasks/1", map[string]any{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/collections/tasks/1", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
}

func TestUnknownCollectionIs404(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/collections/bogus", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPutCollectionWithIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/collections/notes", map[string]any{"id": "1", "title": "v1"})

	w := do(t, router, http.MethodGet, "/collections/notes", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on read")
	}

	// Matching precondition succeeds.
	body, _ := json.Marshal([]map[string]any{{"id": "1", "title": "v2"}})
	req := httptest.NewRequest(http.MethodPut, "/collections/notes", bytes.NewReader(body))
	req.Header.Set("If-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("conditional put = %d, body = %s", w.Code, w.Body.String())
	}

	// The same precondition is stale now.
	req = httptest.NewRequest(http.MethodPut, "/collections/notes", bytes.NewReader(body))
	req.Header.Set("If-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("stale put = %d, want 409", w.Code)
	}

	// Without If-Match the write is last-writer-wins.
	req = httptest.NewRequest(http.MethodPut, "/collections/notes", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("unconditional put = %d", w.Code)
	}
}

func TestQuotaExhaustionIs507(t *testing.T) {
	provider, router := testEnv(t, "")
	provider.SetQuota(1)

	w := do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "won't fit"})
	if w.Code != http.StatusInsufficientStorage {
		t.Errorf("status = %d, want 507", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret")

	w := do(t, router, http.MethodGet, "/summary", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/tasks", map[string]any{"priority": "High"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "valid"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var task models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &task)
	if task.ID == "" || task.Priority != models.PriorityMedium {
		t.Errorf("task = %+v", task)
	}
}

func TestTaskToggleRoundTrip(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "toggle me"})
	var task models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &task)

	w = do(t, router, http.MethodPost, "/tasks/"+task.ID+"/toggle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/tasks", nil)
	var tasks []models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 1 || !tasks[0].Completed {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestSummaryReflectsWrites(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "a"})
	_ = do(t, router, http.MethodPost, "/habits", map[string]any{"name": "b"})

	w := do(t, router, http.MethodGet, "/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary = %d", w.Code)
	}
	var s dashboard.Summary
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Tasks.Total != 1 || s.Habits.Total != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestSearchUnavailableWithoutIndex(t *testing.T) {
	_, router := testEnv(t, "")
	for _, path := range []string{"/search?q=x", "/graph", "/backlinks/1"} {
		w := do(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", path, w.Code)
		}
	}
}

func TestSettingsEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPatch, "/settings", map[string]string{
		"theme": "light",
		"rogue": "value",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}
	var got map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got["theme"] != "light" {
		t.Errorf("theme = %q", got["theme"])
	}
	if _, ok := got["rogue"]; ok {
		t.Error("unrecognized key leaked into settings")
	}
}

func TestExportImportEndpoints(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "exported"})

	w := do(t, router, http.MethodGet, "/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("export missing Content-Disposition")
	}
	archive := w.Body.Bytes()

	// A fresh environment accepts the archive.
	_, router2 := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(archive))
	w = httptest.NewRecorder()
	router2.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router2, http.MethodGet, "/tasks", nil)
	var tasks []models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 1 || tasks[0].Title != "exported" {
		t.Errorf("imported tasks = %+v", tasks)
	}
}

func TestImportUnsupportedVersionIs422(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/import",
		bytes.NewReader([]byte(`{"version":42,"collections":{}}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestClearDataEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "doomed"})

	w := do(t, router, http.MethodDelete, "/data", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/tasks", nil)
	var tasks []models.Task
	_ = json.Unmarshal(w.Body.Bytes(), &tasks)
	if len(tasks) != 0 {
		t.Errorf("tasks after clear = %+v", tasks)
	}
}

func TestUsageEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/tasks", map[string]any{"title": "occupies bytes"})

	w := do(t, router, http.MethodGet, "/usage", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("usage = %d", w.Code)
	}
	var usage backup.Usage
	_ = json.Unmarshal(w.Body.Bytes(), &usage)
	if usage.UsedBytes == 0 {
		t.Error("used bytes = 0 after a write")
	}
}

func TestMediaPartialPatch(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/media", map[string]any{"title": "talk", "type": "Video"})
	var item models.MediaItem
	_ = json.Unmarshal(w.Body.Bytes(), &item)

	w = do(t, router, http.MethodPatch, "/media/"+item.ID, map[string]any{"rating": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/media", nil)
	var items []models.MediaItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if items[0].Rating != 4 {
		t.Errorf("rating = %d", items[0].Rating)
	}
	if items[0].Status != models.MediaToConsume {
		t.Errorf("status changed by partial patch: %q", items[0].Status)
	}
}

func TestWorkflowValidationSurfacesAs400(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/workflows", map[string]any{
		"name": "broken",
		"steps": []map[string]any{
			{"type": "Webhook", "label": "bad type"},
		},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAssistEndpointsWithDisabledClient(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/assist/brief", nil)
	if w.Code != http.StatusOK {
		t.Errorf("brief = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/assist/tasks", map[string]string{"goal": "ship"})
	if w.Code != http.StatusOK {
		t.Errorf("suggest tasks = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/assist/syllabus", map[string]string{"topic": "go"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("syllabus without backend = %d, want 503", w.Code)
	}
}

func TestChatFlow(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/chat", map[string]string{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat = %d, body = %s", w.Code, w.Body.String())
	}
	var reply models.ChatMessage
	_ = json.Unmarshal(w.Body.Bytes(), &reply)
	if reply.Role != models.RoleAssistant || reply.Content == "" {
		t.Errorf("reply = %+v", reply)
	}

	w = do(t, router, http.MethodGet, "/chat", nil)
	var history []models.ChatMessage
	_ = json.Unmarshal(w.Body.Bytes(), &history)
	if len(history) != 2 {
		t.Fatalf("history = %d messages, want user + assistant", len(history))
	}
	if history[0].Role != models.RoleUser {
		t.Errorf("first turn role = %q", history[0].Role)
	}

	w = do(t, router, http.MethodDelete, "/chat", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear chat = %d", w.Code)
	}
}

func TestInvalidJSONBodyIs400(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
