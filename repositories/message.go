//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"grant-desk/domain"
)

type IMessageRepository interface {
	StoreMessage(message domain.ChatMessage) error
	LoadAll() ([]domain.ChatMessage, error)
}

// MessageRepository persists the chat log in BadgerDB so the relay can
// rebuild its in-memory message log after a restart. Writes happen
// synchronously inside the relay's append critical section.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message domain.ChatMessage) error {
	key := fmt.Sprintf("msg:%019d:%s",
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// LoadAll returns every persisted message in ascending creation order.
// Thanks to the padded timestamp in the key, a plain forward prefix
// scan already yields chronological order.
func (m MessageRepository) LoadAll() ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var message domain.ChatMessage
				if err := json.Unmarshal(value, &message); err != nil {
					// A corrupt record must not block the whole replay
					m.log.Warn("Skipping unreadable message record",
						"key", string(it.Item().Key()), "error", err)
					return nil
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
