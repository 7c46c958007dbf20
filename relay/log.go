package relay

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"grant-desk/domain"
	"grant-desk/repositories"
)

// MessageLog is the append-only ordered record of every support chat
// message. It lives in memory for fast replay and, when a store is
// attached, writes through synchronously inside the append critical
// section: a message is durable before any copy is delivered.
type MessageLog struct {
	mu    sync.RWMutex
	items []domain.ChatMessage
	store repositories.IMessageRepository
	log   *slog.Logger
}

// NewMessageLog creates a log. The store may be nil, in which case
// messages live for the process lifetime only.
func NewMessageLog(store repositories.IMessageRepository, log *slog.Logger) *MessageLog {
	return &MessageLog{store: store, log: log}
}

// Load rebuilds the in-memory log from the store. Intended for boot,
// before any connection is accepted.
func (l *MessageLog) Load() error {
	if l.store == nil {
		return nil
	}

	messages, err := l.store.LoadAll()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = messages
	l.log.Info("Message log reloaded", "messages", len(messages))
	return nil
}

// Append adds a message at the tail of the log. The durable write
// happens first: if it fails nothing is appended, keeping memory and
// store consistent.
func (l *MessageLog) Append(msg domain.ChatMessage) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store != nil {
		if err := l.store.StoreMessage(msg); err != nil {
			return err
		}
	}
	l.items = append(l.items, msg)
	return nil
}

// Snapshot returns a copy of the full log in creation order.
func (l *MessageLog) Snapshot() []domain.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make([]domain.ChatMessage, len(l.items))
	copy(res, l.items)
	return res
}

// VisibleTo returns the replay set for a participant, in creation
// order: everything for admins, own and addressed messages otherwise.
func (l *MessageLog) VisibleTo(p domain.Participant) []domain.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.items, func(m domain.ChatMessage, _ int) bool {
		return m.VisibleTo(p)
	})
}

// Conversation returns the exchange between two identifiers in either
// direction, in creation order. An unknown pair yields an empty list,
// not an error.
func (l *MessageLog) Conversation(a, b string) []domain.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return lo.Filter(l.items, func(m domain.ChatMessage, _ int) bool {
		return m.InConversation(a, b)
	})
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
