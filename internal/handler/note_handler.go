package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

func (h *NoteHandler) Create(c *gin.Context) {
	var req service.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	note, apiErr := h.noteService.Create(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

func (h *NoteHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	notes, apiErr := h.noteService.List(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandler) Update(c *gin.Context) {
	var req service.NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	note, apiErr := h.noteService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"note": note})
}

func (h *NoteHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.noteService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}
