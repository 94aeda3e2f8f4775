package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var req service.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	expense, apiErr := h.expenseService.Create(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	expenses, apiErr := h.expenseService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var req service.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	expense, apiErr := h.expenseService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.expenseService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
