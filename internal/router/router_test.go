package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"joylife/backend/internal/ai"
	"joylife/backend/internal/config"
	"joylife/backend/internal/db"
	"joylife/backend/internal/handler"
	"joylife/backend/internal/repository"
	"joylife/backend/internal/router"
	"joylife/backend/internal/service"
	"joylife/backend/internal/timer"
	"joylife/backend/internal/ws"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type timerEnvelope struct {
	Timer struct {
		Mode             string `json:"mode"`
		TotalSeconds     int    `json:"totalSeconds"`
		RemainingSeconds int    `json:"remainingSeconds"`
		Running          bool   `json:"running"`
		Ringing          bool   `json:"ringing"`
		Expired          bool   `json:"expired"`
	} `json:"timer"`
}

type workLogEnvelope struct {
	WorkLog struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Hours float64 `json:"hours"`
	} `json:"workLog"`
}

type workLogListEnvelope struct {
	WorkLogs []struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Hours float64 `json:"hours"`
	} `json:"workLogs"`
}

type taskEnvelope struct {
	Task struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Done     bool   `json:"done"`
		Priority string `json:"priority"`
	} `json:"task"`
}

type taskListEnvelope struct {
	Tasks []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Done  bool   `json:"done"`
	} `json:"tasks"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestAuthAndTaskLifecycle(t *testing.T) {
	engine := setupTestEngine(t, "")

	user1 := registerUser(t, engine, "user1@example.com", "123456")
	user2 := registerUser(t, engine, "user2@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/tasks", user1.Token, map[string]interface{}{
		"title":    "write weekly review",
		"priority": "high",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on create, got %d: %s", status, string(body))
	}
	var created taskEnvelope
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Task.Priority != "high" {
		t.Fatalf("expected high priority, got %s", created.Task.Priority)
	}

	status, body = requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/toggle", user1.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on toggle, got %d: %s", status, string(body))
	}
	var toggled taskEnvelope
	if err := json.Unmarshal(body, &toggled); err != nil {
		t.Fatalf("unmarshal toggled task: %v", err)
	}
	if !toggled.Task.Done {
		t.Fatal("expected task done after toggle")
	}

	// User isolation: user2 sees nothing and cannot touch user1's task.
	status, body = requestJSON(t, engine, http.MethodGet, "/api/tasks", user2.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for user2 list, got %d", status)
	}
	var user2Tasks taskListEnvelope
	if err := json.Unmarshal(body, &user2Tasks); err != nil {
		t.Fatalf("unmarshal user2 tasks: %v", err)
	}
	if len(user2Tasks.Tasks) != 0 {
		t.Fatalf("expected no tasks for user2, got %d", len(user2Tasks.Tasks))
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/tasks/"+created.Task.ID, user2.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 deleting another user's task, got %d", status)
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/tasks/"+created.Task.ID, user1.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", status)
	}
}

func TestTimerFlowAndWorkLog(t *testing.T) {
	engine := setupTestEngine(t, "")
	user := registerUser(t, engine, "timer@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodGet, "/api/timer/state", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for state, got %d", status)
	}
	var state timerEnvelope
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.Timer.Mode != "focus" || state.Timer.RemainingSeconds != 25*60 || state.Timer.Running {
		t.Fatalf("unexpected initial state: %+v", state.Timer)
	}

	status, body = requestJSON(t, engine, http.MethodPost, "/api/timer/toggle", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on toggle, got %d", status)
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal toggled state: %v", err)
	}
	if !state.Timer.Running {
		t.Fatal("expected timer running after toggle")
	}

	// Saving without a title in focus mode is rejected and the timer keeps
	// its state.
	status, body = requestJSON(t, engine, http.MethodPost, "/api/worklogs", user.Token, map[string]string{
		"note": "forgot the title",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d: %s", status, string(body))
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "title_required" {
		t.Fatalf("expected title_required, got %s", apiErr.Error.Code)
	}

	status, body = requestJSON(t, engine, http.MethodPost, "/api/worklogs", user.Token, map[string]string{
		"title": "deep work",
		"note":  "draft chapter",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on save, got %d: %s", status, string(body))
	}
	var saved workLogEnvelope
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatalf("unmarshal work log: %v", err)
	}
	if saved.WorkLog.Title != "deep work" {
		t.Fatalf("unexpected title %q", saved.WorkLog.Title)
	}

	// Saving resets the countdown to a full, stopped timer.
	status, body = requestJSON(t, engine, http.MethodGet, "/api/timer/state", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for state, got %d", status)
	}
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal state after save: %v", err)
	}
	if state.Timer.Running || state.Timer.RemainingSeconds != state.Timer.TotalSeconds {
		t.Fatalf("expected fresh timer after save, got %+v", state.Timer)
	}

	status, body = requestJSON(t, engine, http.MethodGet, "/api/worklogs", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for list, got %d", status)
	}
	var list workLogListEnvelope
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list.WorkLogs) != 1 {
		t.Fatalf("expected one work log, got %d", len(list.WorkLogs))
	}
}

func TestSwitchModeValidatesAndAppliesCustomMinutes(t *testing.T) {
	engine := setupTestEngine(t, "")
	user := registerUser(t, engine, "modes@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/timer/mode", user.Token, map[string]interface{}{
		"mode": "nap",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad mode, got %d", status)
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "invalid_mode" {
		t.Fatalf("expected invalid_mode, got %s", apiErr.Error.Code)
	}

	status, body = requestJSON(t, engine, http.MethodPost, "/api/timer/mode", user.Token, map[string]interface{}{
		"mode":          "custom",
		"customMinutes": 10,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for custom mode, got %d", status)
	}
	var state timerEnvelope
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.Timer.Mode != "custom" || state.Timer.TotalSeconds != 600 {
		t.Fatalf("unexpected custom state: %+v", state.Timer)
	}
}

func TestChatRejectedWhenNotActivated(t *testing.T) {
	engine := setupTestEngine(t, "")
	user := registerUser(t, engine, "chat@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/chat/messages", user.Token, map[string]string{
		"text": "hello",
	})
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 without API key, got %d: %s", status, string(body))
	}
	var apiErr apiErrorEnvelope
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if apiErr.Error.Code != "not_activated" {
		t.Fatalf("expected not_activated, got %s", apiErr.Error.Code)
	}
}

func TestChatStreamsReplyAsEvents(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"Hello", " there"} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", chunk)
		}
	}))
	defer upstream.Close()

	engine := setupTestEngine(t, upstream.URL)
	user := registerUser(t, engine, "stream@example.com", "123456")

	status, body := requestJSON(t, engine, http.MethodPost, "/api/chat/messages", user.Token, map[string]string{
		"text": "hi",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for streamed reply, got %d: %s", status, string(body))
	}
	payload := string(body)
	if !strings.Contains(payload, "Hello there") {
		t.Fatalf("expected streamed text in events, got: %s", payload)
	}
	if !strings.Contains(payload, "event:done") && !strings.Contains(payload, "event: done") {
		t.Fatalf("expected terminating done event, got: %s", payload)
	}

	// The full exchange lands in history.
	status, body = requestJSON(t, engine, http.MethodGet, "/api/chat/messages", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for history, got %d", status)
	}
	var history struct {
		Messages []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.Messages))
	}
	if history.Messages[1].Text != "Hello there" {
		t.Fatalf("unexpected assistant text: %q", history.Messages[1].Text)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := setupTestEngine(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

// setupTestEngine wires the full stack against a temp database. aiBaseURL
// empty leaves the assistant deactivated.
func setupTestEngine(t *testing.T, aiBaseURL string) http.Handler {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	aiCfg := config.AIConfig{
		BaseURL:       aiBaseURL,
		Model:         "test-model",
		TTSModel:      "test-tts",
		TTSSampleRate: 24000,
	}
	if aiBaseURL != "" {
		aiCfg.APIKey = "test-key"
	}
	aiClient := ai.NewClient(aiCfg)

	timers := timer.NewManager(nil)
	t.Cleanup(timers.Shutdown)

	userRepo := repository.NewUserRepository(database)
	authService := service.NewAuthService(userRepo, "test-secret", 24*time.Hour)
	workLogService := service.NewWorkLogService(repository.NewWorkLogRepository(database), timers)
	chatService := service.NewChatService(aiClient, false, nil)

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Timer:   handler.NewTimerHandler(service.NewTimerService(timers)),
		WorkLog: handler.NewWorkLogHandler(workLogService),
		Diary:   handler.NewDiaryHandler(service.NewDiaryService(repository.NewDiaryRepository(database))),
		Task:    handler.NewTaskHandler(service.NewTaskService(repository.NewTaskRepository(database))),
		Expense: handler.NewExpenseHandler(service.NewExpenseService(repository.NewExpenseRepository(database))),
		Goal:    handler.NewGoalHandler(service.NewGoalService(repository.NewGoalRepository(database))),
		Note:    handler.NewNoteHandler(service.NewNoteService(repository.NewNoteRepository(database))),
		Photo:   handler.NewPhotoHandler(service.NewPhotoService(repository.NewPhotoRepository(database))),
		Study:   handler.NewStudyHandler(service.NewStudyService(repository.NewStudyRepository(database))),
		Chat:    handler.NewChatHandler(chatService),
		WS:      ws.NewHandler(authService, timers),
	}

	return router.New(authService, handlers, []string{"http://localhost:5173"})
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
