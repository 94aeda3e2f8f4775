package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
	"joylife/backend/internal/timer"
)

type TimerHandler struct {
	timerService *service.TimerService
}

type switchModeRequest struct {
	Mode          string `json:"mode"`
	CustomMinutes int    `json:"customMinutes"`
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) State(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"timer": h.timerService.State(userID)})
}

func (h *TimerHandler) Toggle(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"timer": h.timerService.Toggle(userID)})
}

func (h *TimerHandler) Reset(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"timer": h.timerService.Reset(userID)})
}

func (h *TimerHandler) SwitchMode(c *gin.Context) {
	var req switchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	snap, apiErr := h.timerService.SwitchMode(userID, timer.Mode(req.Mode), req.CustomMinutes)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timer": snap})
}

func (h *TimerHandler) DismissAlarm(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"timer": h.timerService.DismissAlarm(userID)})
}
