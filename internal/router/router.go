package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/handler"
	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
	"joylife/backend/internal/ws"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Timer   *handler.TimerHandler
	WorkLog *handler.WorkLogHandler
	Diary   *handler.DiaryHandler
	Task    *handler.TaskHandler
	Expense *handler.ExpenseHandler
	Goal    *handler.GoalHandler
	Note    *handler.NoteHandler
	Photo   *handler.PhotoHandler
	Study   *handler.StudyHandler
	Chat    *handler.ChatHandler
	WS      *ws.Handler
}

func New(authService *service.AuthService, h Handlers, corsOrigins []string) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// The WebSocket route authenticates via query token inside the handler;
	// browsers cannot attach headers to a WebSocket dial.
	api.GET("/timer/ws", h.WS.HandleTimer)

	authed := api.Group("")
	authed.Use(middleware.Auth(authService))

	timer := authed.Group("/timer")
	timer.GET("/state", h.Timer.State)
	timer.POST("/toggle", h.Timer.Toggle)
	timer.POST("/reset", h.Timer.Reset)
	timer.POST("/mode", h.Timer.SwitchMode)
	timer.POST("/alarm/dismiss", h.Timer.DismissAlarm)

	workLogs := authed.Group("/worklogs")
	workLogs.POST("", h.WorkLog.LogSession)
	workLogs.GET("", h.WorkLog.List)
	workLogs.DELETE("/:id", h.WorkLog.Delete)

	diary := authed.Group("/diary")
	diary.POST("", h.Diary.Create)
	diary.GET("", h.Diary.List)
	diary.PUT("/:id", h.Diary.Update)
	diary.DELETE("/:id", h.Diary.Delete)

	tasks := authed.Group("/tasks")
	tasks.POST("", h.Task.Create)
	tasks.GET("", h.Task.List)
	tasks.PUT("/:id", h.Task.Update)
	tasks.POST("/:id/toggle", h.Task.ToggleDone)
	tasks.DELETE("/:id", h.Task.Delete)

	expenses := authed.Group("/expenses")
	expenses.POST("", h.Expense.Create)
	expenses.GET("", h.Expense.List)
	expenses.PUT("/:id", h.Expense.Update)
	expenses.DELETE("/:id", h.Expense.Delete)

	goals := authed.Group("/goals")
	goals.POST("", h.Goal.Create)
	goals.GET("", h.Goal.List)
	goals.PUT("/:id", h.Goal.Update)
	goals.DELETE("/:id", h.Goal.Delete)

	notes := authed.Group("/notes")
	notes.POST("", h.Note.Create)
	notes.GET("", h.Note.List)
	notes.PUT("/:id", h.Note.Update)
	notes.DELETE("/:id", h.Note.Delete)

	photos := authed.Group("/photos")
	photos.POST("", h.Photo.Create)
	photos.GET("", h.Photo.List)
	photos.PUT("/:id", h.Photo.Update)
	photos.DELETE("/:id", h.Photo.Delete)

	study := authed.Group("/study-plans")
	study.POST("", h.Study.Create)
	study.GET("", h.Study.List)
	study.PUT("/:id", h.Study.Update)
	study.DELETE("/:id", h.Study.Delete)

	chat := authed.Group("/chat")
	chat.GET("/messages", h.Chat.History)
	chat.POST("/messages", h.Chat.Send)
	chat.DELETE("/messages", h.Chat.Clear)
	chat.POST("/search", h.Chat.Search)

	return engine
}
