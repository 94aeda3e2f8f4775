package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

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

func main() {
	configPath := flag.String("config", "./configs", "directory containing config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	database, err := db.OpenSQLite(cfg.DB.Path)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.DB.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	workLogRepo := repository.NewWorkLogRepository(database)
	diaryRepo := repository.NewDiaryRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	expenseRepo := repository.NewExpenseRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	noteRepo := repository.NewNoteRepository(database)
	photoRepo := repository.NewPhotoRepository(database)
	studyRepo := repository.NewStudyRepository(database)

	// Alarm audio plays in the browser; the server only tracks ringing
	// state, so engines get no sounder.
	timers := timer.NewManager(nil)
	defer timers.Shutdown()

	aiClient := ai.NewClient(cfg.AI)
	if !aiClient.Activated() {
		log.Printf("ai assistant not activated: no API key configured")
	}

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenTTL)
	timerService := service.NewTimerService(timers)
	workLogService := service.NewWorkLogService(workLogRepo, timers)
	chatService := service.NewChatService(aiClient, cfg.AI.Voice, nil)

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Timer:   handler.NewTimerHandler(timerService),
		WorkLog: handler.NewWorkLogHandler(workLogService),
		Diary:   handler.NewDiaryHandler(service.NewDiaryService(diaryRepo)),
		Task:    handler.NewTaskHandler(service.NewTaskService(taskRepo)),
		Expense: handler.NewExpenseHandler(service.NewExpenseService(expenseRepo)),
		Goal:    handler.NewGoalHandler(service.NewGoalService(goalRepo)),
		Note:    handler.NewNoteHandler(service.NewNoteService(noteRepo)),
		Photo:   handler.NewPhotoHandler(service.NewPhotoService(photoRepo)),
		Study:   handler.NewStudyHandler(service.NewStudyService(studyRepo)),
		Chat:    handler.NewChatHandler(chatService),
		WS:      ws.NewHandler(authService, timers),
	}

	engine := router.New(authService, handlers, cfg.Server.CORSOrigins)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("backend listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
