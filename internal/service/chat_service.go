package service

import (
	"context"
	"errors"
	"strings"

	"joylife/backend/internal/ai"
	"joylife/backend/internal/chat"
	apperrors "joylife/backend/internal/errors"
)

// ChatService owns the per-user assistant conversations and the grounded
// search entry point.
type ChatService struct {
	client   *ai.Client
	registry *chat.Registry
}

func NewChatService(client *ai.Client, voice bool, player chat.Player) *ChatService {
	return &ChatService{
		client: client,
		registry: chat.NewRegistry(func() *chat.Conversation {
			return chat.NewConversation(client, client.Activated(), voice, player)
		}),
	}
}

func (s *ChatService) History(userID string) []chat.Message {
	return s.registry.Conversation(userID).Messages()
}

func (s *ChatService) ClearHistory(userID string) {
	s.registry.Clear(userID)
}

// Send runs one streaming exchange. subscriber receives each republished
// message as it arrives; the conversation attaches it only once the send is
// admitted, so a rejected send cannot disturb a stream already running.
func (s *ChatService) Send(ctx context.Context, userID, text string, subscriber func(index int, msg chat.Message)) *apperrors.APIError {
	err := s.registry.Conversation(userID).Send(ctx, text, subscriber)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return apperrors.Validation("empty_message", "message must not be empty")
	case errors.Is(err, chat.ErrBusy):
		return apperrors.Conflict("reply_in_progress", "a reply is already in progress", nil)
	case errors.Is(err, ai.ErrNotActivated):
		return apperrors.NotActivated()
	default:
		return apperrors.Upstream(err.Error())
	}
}

// Search issues a one-shot web-grounded completion and returns the answer
// with its source links.
func (s *ChatService) Search(ctx context.Context, query string) (*ai.GroundedAnswer, *apperrors.APIError) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("empty_query", "query must not be empty")
	}
	answer, err := s.client.CompleteGrounded(ctx, query)
	if err != nil {
		if errors.Is(err, ai.ErrNotActivated) {
			return nil, apperrors.NotActivated()
		}
		return nil, apperrors.Upstream(err.Error())
	}
	return answer, nil
}
