package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) Create(c *gin.Context) {
	var req service.GoalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	goal, apiErr := h.goalService.Create(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

func (h *GoalHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	goals, apiErr := h.goalService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *GoalHandler) Update(c *gin.Context) {
	var req service.GoalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	goal, apiErr := h.goalService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

func (h *GoalHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.goalService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
