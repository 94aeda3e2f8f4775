// Package chat manages the streaming exchange with the AI assistant: an
// append-only message list per conversation, grown chunk by chunk while a
// single in-flight stream is consumed.
package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"joylife/backend/internal/ai"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	IsError bool   `json:"isError"`
}

var (
	// ErrEmptyInput rejects a blank message before anything is appended.
	ErrEmptyInput = errors.New("chat: empty input")
	// ErrBusy rejects a send while a stream is already in flight.
	ErrBusy = errors.New("chat: a reply is already in progress")
)

// Streamer is the slice of the AI client a conversation consumes.
type Streamer interface {
	Stream(ctx context.Context, history []ai.Message, emit func(chunk string)) error
	Speak(ctx context.Context, text string) (*ai.Audio, error)
}

// Player plays a decoded audio payload exactly once. Implementations own
// the single playback channel; the conversation never constructs a second
// one for overlapping replies.
type Player interface {
	PlayOnce(audio *ai.Audio) error
}

type Conversation struct {
	mu         sync.Mutex
	streamer   Streamer
	player     Player
	voice      bool
	activated  bool
	typing     bool
	messages   []Message
	subscriber func(index int, msg Message)
}

func NewConversation(streamer Streamer, activated bool, voice bool, player Player) *Conversation {
	return &Conversation{
		streamer:  streamer,
		player:    player,
		voice:     voice,
		activated: activated,
	}
}

// Messages returns a copy of the ordered message list.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Typing reports whether a reply stream is in flight.
func (c *Conversation) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Activated reports whether the assistant accepts sends. It flips false when
// the upstream rejects the credential and stays false until re-activation.
func (c *Conversation) Activated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activated
}

// Send runs one full streaming exchange: append the user message, append an
// empty assistant placeholder, then grow the placeholder in arrival order
// until the stream ends. Blank input and concurrent sends are rejected
// before anything is appended. Send blocks until the reply is complete.
//
// subscriber (may be nil) receives every republished message for this
// exchange. It is attached only after the admission guards pass and detached
// when the exchange ends, so a rejected send never disturbs the delivery of
// a stream already in flight.
func (c *Conversation) Send(ctx context.Context, text string, subscriber func(index int, msg Message)) error {
	trimmed := strings.TrimSpace(text)

	c.mu.Lock()
	if trimmed == "" {
		c.mu.Unlock()
		return ErrEmptyInput
	}
	if c.typing {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.activated {
		c.mu.Unlock()
		return ai.ErrNotActivated
	}

	c.typing = true
	c.subscriber = subscriber
	c.messages = append(c.messages, Message{Role: RoleUser, Text: trimmed})
	userIdx := len(c.messages) - 1
	c.messages = append(c.messages, Message{Role: RoleAssistant})
	replyIdx := len(c.messages) - 1
	history := c.historyLocked(replyIdx)
	c.mu.Unlock()

	c.publish(userIdx)
	c.publish(replyIdx)

	err := c.streamer.Stream(ctx, history, func(chunk string) {
		c.mu.Lock()
		c.messages[replyIdx].Text += chunk
		c.mu.Unlock()
		c.publish(replyIdx)
	})

	c.mu.Lock()
	c.typing = false
	if err != nil {
		if errors.Is(err, ai.ErrNotActivated) {
			c.activated = false
		}
		// Whatever partial text accumulated is replaced wholesale; the
		// error path never shows half an answer.
		c.messages[replyIdx] = Message{Role: RoleAssistant, Text: assistantErrorText(err), IsError: true}
		c.mu.Unlock()
		c.publish(replyIdx)
		c.mu.Lock()
		c.subscriber = nil
		c.mu.Unlock()
		return err
	}
	full := c.messages[replyIdx].Text
	speak := c.voice && full != ""
	c.subscriber = nil
	c.mu.Unlock()

	if speak {
		c.speakOnce(ctx, full)
	}
	return nil
}

// speakOnce is best-effort: voice is an enhancement, so failures are logged
// and never surfaced.
func (c *Conversation) speakOnce(ctx context.Context, text string) {
	audio, err := c.streamer.Speak(ctx, text)
	if err != nil {
		log.Printf("tts request failed: %v", err)
		return
	}
	if c.player == nil {
		return
	}
	if err := c.player.PlayOnce(audio); err != nil {
		log.Printf("tts playback failed: %v", err)
	}
}

func (c *Conversation) publish(index int) {
	c.mu.Lock()
	fn := c.subscriber
	var msg Message
	if index < len(c.messages) {
		msg = c.messages[index]
	}
	c.mu.Unlock()

	if fn != nil {
		fn(index, msg)
	}
}

// historyLocked converts the message list (excluding the empty placeholder
// at replyIdx and any error messages) into upstream roles.
func (c *Conversation) historyLocked(replyIdx int) []ai.Message {
	history := make([]ai.Message, 0, replyIdx)
	for i := 0; i < replyIdx; i++ {
		msg := c.messages[i]
		if msg.IsError {
			continue
		}
		role := ai.RoleUser
		if msg.Role == RoleAssistant {
			role = ai.RoleModel
		}
		history = append(history, ai.Message{Role: role, Text: msg.Text})
	}
	return history
}

func assistantErrorText(err error) string {
	if errors.Is(err, ai.ErrNotActivated) {
		return "The assistant is not activated. Add a valid API key and try again."
	}
	return "Sorry, the assistant could not answer right now. Please try again."
}
