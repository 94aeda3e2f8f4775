package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type DiaryHandler struct {
	diaryService *service.DiaryService
}

func NewDiaryHandler(diaryService *service.DiaryService) *DiaryHandler {
	return &DiaryHandler{diaryService: diaryService}
}

func (h *DiaryHandler) Create(c *gin.Context) {
	var req service.DiaryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	entry, apiErr := h.diaryService.Create(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *DiaryHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, apiErr := h.diaryService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *DiaryHandler) Update(c *gin.Context) {
	var req service.DiaryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	entry, apiErr := h.diaryService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *DiaryHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.diaryService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
