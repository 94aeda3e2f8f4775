package chat

import "sync"

// Registry keeps one conversation per user for the process lifetime.
// Conversations are ephemeral: they are never persisted and vanish on
// restart.
type Registry struct {
	mu      sync.Mutex
	convs   map[string]*Conversation
	newConv func() *Conversation
}

func NewRegistry(newConv func() *Conversation) *Registry {
	return &Registry{
		convs:   make(map[string]*Conversation),
		newConv: newConv,
	}
}

func (r *Registry) Conversation(userID string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv, ok := r.convs[userID]; ok {
		return conv
	}
	conv := r.newConv()
	r.convs[userID] = conv
	return conv
}

// Clear drops a user's conversation so the next send starts fresh.
func (r *Registry) Clear(userID string) {
	r.mu.Lock()
	delete(r.convs, userID)
	r.mu.Unlock()
}
