package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joylife/backend/internal/chat"
	"joylife/backend/internal/middleware"
	"joylife/backend/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type searchRequest struct {
	Query string `json:"query"`
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) History(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, gin.H{"messages": h.chatService.History(userID)})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	userID := middleware.UserID(c)
	h.chatService.ClearHistory(userID)
	c.Status(http.StatusNoContent)
}

// Send runs one exchange and streams the assistant's reply back as
// server-sent events. Each "message" event carries the message index and its
// full text so far, so the client can render incrementally without stitching
// deltas. Errors raised before the first event fall back to the plain JSON
// error envelope.
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)

	// Send runs synchronously and republishes every mutation through the
	// subscriber, so writing events from the callback streams in order. The
	// subscriber lives inside the conversation's single-flight admission: a
	// rejected send here never detaches a stream another request is driving.
	streaming := false
	apiErr := h.chatService.Send(c.Request.Context(), userID, req.Text, func(index int, msg chat.Message) {
		streaming = true
		c.SSEvent("message", gin.H{
			"index":   index,
			"role":    msg.Role,
			"text":    msg.Text,
			"isError": msg.IsError,
		})
		c.Writer.Flush()
	})
	if apiErr != nil && !streaming {
		writeError(c, apiErr)
		return
	}
	if apiErr != nil {
		c.SSEvent("error", gin.H{"code": apiErr.Code, "message": apiErr.Message})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{"messages": len(h.chatService.History(userID))})
	c.Writer.Flush()
}

func (h *ChatHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	answer, apiErr := h.chatService.Search(c.Request.Context(), req.Query)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
