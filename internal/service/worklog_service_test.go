package service

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"joylife/backend/internal/db"
	"joylife/backend/internal/model"
	"joylife/backend/internal/repository"
	"joylife/backend/internal/timer"
)

func TestSessionHoursRounding(t *testing.T) {
	cases := []struct {
		elapsedSeconds int
		want           float64
	}{
		{0, 0},
		{1, 0},
		{30, 0.01},
		{600, 0.17},
		{1500, 0.42},
		{3600, 1},
		{5400, 1.5},
	}
	for _, tc := range cases {
		if got := sessionHours(tc.elapsedSeconds); got != tc.want {
			t.Errorf("sessionHours(%d) = %v, want %v", tc.elapsedSeconds, got, tc.want)
		}
	}
}

func TestLogSessionRequiresTitleInFocusMode(t *testing.T) {
	svc, timers, userID := setupWorkLogService(t)

	_, apiErr := svc.LogSession(context.Background(), userID, LogSessionInput{Note: "no title"})
	if apiErr == nil || apiErr.Code != "title_required" {
		t.Fatalf("expected title_required, got %+v", apiErr)
	}

	// Break sessions can be logged without a title.
	timers.Engine(userID).SwitchMode(timer.ModeShortBreak, 0)
	workLog, apiErr := svc.LogSession(context.Background(), userID, LogSessionInput{})
	if apiErr != nil {
		t.Fatalf("unexpected error for break session: %+v", apiErr)
	}
	if workLog.Hours != 0 {
		t.Fatalf("expected zero hours for unstarted break, got %v", workLog.Hours)
	}
}

func TestLogSessionResetsTimerAfterSave(t *testing.T) {
	svc, timers, userID := setupWorkLogService(t)

	engine := timers.Engine(userID)
	engine.Toggle()
	if !engine.Snapshot().Running {
		t.Fatal("expected engine running before save")
	}

	workLog, apiErr := svc.LogSession(context.Background(), userID, LogSessionInput{Title: "deep work"})
	if apiErr != nil {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if workLog.Title != "deep work" {
		t.Fatalf("unexpected title %q", workLog.Title)
	}

	snap := engine.Snapshot()
	if snap.Running || snap.RemainingSeconds != snap.TotalSeconds {
		t.Fatalf("expected fresh timer after save, got %+v", snap)
	}

	logs, apiErr := svc.List(context.Background(), userID, 10)
	if apiErr != nil {
		t.Fatalf("list failed: %+v", apiErr)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one saved log, got %d", len(logs))
	}
}

func TestDeleteMissingWorkLog(t *testing.T) {
	svc, _, userID := setupWorkLogService(t)

	apiErr := svc.Delete(context.Background(), userID, "no-such-id")
	if apiErr == nil || apiErr.Code != "work_log_not_found" {
		t.Fatalf("expected work_log_not_found, got %+v", apiErr)
	}
}

func setupWorkLogService(t *testing.T) (*WorkLogService, *timer.Manager, string) {
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

	now := time.Now().UTC()
	user := model.User{
		ID:           "user-1",
		Email:        "worklog@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repository.NewUserRepository(database).Create(context.Background(), &user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	timers := timer.NewManager(nil)
	t.Cleanup(timers.Shutdown)

	return NewWorkLogService(repository.NewWorkLogRepository(database), timers), timers, user.ID
}
