package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopinath21052006/NeuroTrain/internal/analytics"
	"github.com/Gopinath21052006/NeuroTrain/internal/chat"
	"github.com/Gopinath21052006/NeuroTrain/internal/config"
	"github.com/Gopinath21052006/NeuroTrain/internal/dispatcher"
	"github.com/Gopinath21052006/NeuroTrain/internal/parser"
	"github.com/Gopinath21052006/NeuroTrain/internal/session"
	"github.com/Gopinath21052006/NeuroTrain/internal/store"
	"github.com/Gopinath21052006/NeuroTrain/internal/sysmon"
	"github.com/Gopinath21052006/NeuroTrain/internal/voice"
	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()

	chatServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi!"}}]}`))
	}))
	t.Cleanup(chatServer.Close)

	cfg := &config.Config{
		Port:            "8080",
		StaticAudioPath: dir,
		TempAudioPath:   dir,
	}

	tasks, err := store.NewTaskStore(dir + "/tasks.json")
	if err != nil {
		t.Fatalf("failed to open task store: %v", err)
	}
	schedule, err := store.NewScheduleStore(dir + "/schedule.json")
	if err != nil {
		t.Fatalf("failed to open schedule store: %v", err)
	}

	sessions := session.NewManager(dir+"/sessions", 20, time.Hour)
	chatClient := chat.NewClient(chatServer.URL, "test-key", "test-model", 150, 0.7, sessions)
	voiceClient := voice.NewClient(chatServer.URL, "test-key", "voice", "mp3", 1.0, dir)
	monitor := sysmon.NewMonitor()
	launcher := sysmon.NewLauncher(true)
	aggregator := analytics.New(analytics.DefaultSampleCap)
	cmdParser := parser.New()

	disp := dispatcher.New(cmdParser, tasks, schedule, monitor, launcher, chatClient,
		aggregator, dispatcher.DefaultTimeouts())

	h := NewHandler(Deps{
		Config:     cfg,
		Parser:     cmdParser,
		Dispatcher: disp,
		Analytics:  aggregator,
		Chat:       chatClient,
		Voice:      voiceClient,
		Uploader:   voice.NewUploaderFromEnv(),
		Sessions:   sessions,
		Tasks:      tasks,
		Schedule:   schedule,
		Monitor:    monitor,
		Launcher:   launcher,
	})

	r := gin.New()
	h.Routes(r)
	return r, h
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "GET", "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", w.Body.String())
	}
}

func TestParseCommand(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/voice/parse", gin.H{"text": "add a task to buy milk"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success       bool                `json:"success"`
		ParsedCommand types.ParsedCommand `json:"parsed_command"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.ParsedCommand.Intent != types.IntentTask {
		t.Errorf("Intent = %q, want task", resp.ParsedCommand.Intent)
	}
	if resp.ParsedCommand.Parameters["title"] != "buy milk" {
		t.Errorf("title = %q, want buy milk", resp.ParsedCommand.Parameters["title"])
	}
}

func TestParseCommandMissingText(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/voice/parse", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFullProcessAddsTask(t *testing.T) {
	r, h := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/voice/full-process", gin.H{"text": "add a task to water the plants"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success         bool                  `json:"success"`
		OriginalText    string                `json:"original_text"`
		ExecutionResult types.ExecutionResult `json:"execution_result"`
		SessionID       string                `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.ExecutionResult.Success {
		t.Errorf("execution result = %+v, want success", resp.ExecutionResult)
	}
	if resp.SessionID == "" {
		t.Error("a session id should be generated when none is given")
	}

	tasks, err := h.deps.Tasks.List(httptest.NewRequest("GET", "/", nil).Context())
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "water the plants" {
		t.Errorf("tasks = %v, want the added task", tasks)
	}
}

func TestTaskCRUD(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/tasks", gin.H{"title": "write report"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}

	var created struct {
		Task types.Task `json:"task"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}

	w = doJSON(t, r, "GET", "/api/tasks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "write report") {
		t.Errorf("list body = %s, want the created task", w.Body.String())
	}

	w = doJSON(t, r, "PUT", "/api/tasks/"+created.Task.ID, gin.H{"completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200", w.Code)
	}

	w = doJSON(t, r, "DELETE", "/api/tasks/"+created.Task.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}

	w = doJSON(t, r, "DELETE", "/api/tasks/"+created.Task.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestScheduleEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/schedule", gin.H{"time": "14:30", "message": "standup"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}

	w = doJSON(t, r, "GET", "/api/schedule", nil)
	if !strings.Contains(w.Body.String(), "standup") {
		t.Errorf("list body = %s, want the created reminder", w.Body.String())
	}

	w = doJSON(t, r, "DELETE", "/api/schedule", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", w.Code)
	}

	w = doJSON(t, r, "GET", "/api/schedule", nil)
	if strings.Contains(w.Body.String(), "standup") {
		t.Error("reminders should be gone after clear")
	}
}

func TestStatsAfterCommands(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, "POST", "/api/voice/full-process", gin.H{"text": "show my tasks"})
	doJSON(t, r, "POST", "/api/voice/full-process", gin.H{"text": "list my tasks"})

	w := doJSON(t, r, "GET", "/api/voice/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		TotalCommands int64  `json:"total_commands"`
		SuccessRate   string `json:"success_rate"`
		MostPopular   string `json:"most_popular"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.TotalCommands != 2 {
		t.Errorf("TotalCommands = %d, want 2", resp.TotalCommands)
	}
	if resp.SuccessRate != "100.0%" {
		t.Errorf("SuccessRate = %q, want 100.0%%", resp.SuccessRate)
	}
	if resp.MostPopular != types.IntentTask {
		t.Errorf("MostPopular = %q, want task", resp.MostPopular)
	}
}

func TestChatEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/chat", gin.H{"message": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"reply":"hi!"`) {
		t.Errorf("body = %s, want the model reply", w.Body.String())
	}
}

func TestUploadAudioRequiresFile(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/voice/upload", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadAudioRequiresCredentials(t *testing.T) {
	t.Setenv("QINIU_ACCESS_KEY", "")
	t.Setenv("QINIU_SECRET_KEY", "")
	r, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "in.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("RIFFxxxx"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/voice/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// The test uploader has no QINIU_* credentials.
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestStreamTranscribeRequiresBody(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/voice/transcribe/stream", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStreamTranscribeReportsRecognitionFailure(t *testing.T) {
	r, _ := newTestRouter(t)

	// The backing server speaks plain HTTP, so the websocket handshake fails
	// and the route surfaces it as a recognition error.
	req := httptest.NewRequest("POST", "/api/voice/transcribe/stream", bytes.NewReader(make([]byte, 64)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "recognition failed") {
		t.Errorf("body = %s, want a recognition error", w.Body.String())
	}
}

func TestSupportedApps(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "GET", "/api/system/apps", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "chrome") {
		t.Errorf("body = %s, want chrome listed", w.Body.String())
	}
}

func TestOpenAppRejectsUnknown(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/system/open", gin.H{"app": "definitely-not-real"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
