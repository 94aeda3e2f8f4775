package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type WorkLogHandler struct {
	workLogService *service.WorkLogService
}

type logSessionRequest struct {
	Title string `json:"title"`
	Note  string `json:"note"`
}

func NewWorkLogHandler(workLogService *service.WorkLogService) *WorkLogHandler {
	return &WorkLogHandler{workLogService: workLogService}
}

func (h *WorkLogHandler) LogSession(c *gin.Context) {
	var req logSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	workLog, apiErr := h.workLogService.LogSession(c.Request.Context(), userID, service.LogSessionInput{
		Title: req.Title,
		Note:  req.Note,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workLog": workLog})
}

func (h *WorkLogHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, apiErr := h.workLogService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workLogs": logs})
}

func (h *WorkLogHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.workLogService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
