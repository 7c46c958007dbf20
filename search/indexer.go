package search

import (
	"context"
	"log/slog"

	"grant-desk/domain"
)

// Indexer consumes messages from the relay's index queue and feeds the
// full-text index. Indexing is best effort: a failed document is logged
// and skipped, never retried, so the queue cannot back up behind a bad
// record.
type Indexer struct {
	log   *slog.Logger
	index *MessageIndex
	queue <-chan domain.ChatMessage
}

func NewIndexer(log *slog.Logger, index *MessageIndex, queue <-chan domain.ChatMessage) *Indexer {
	return &Indexer{log: log, index: index, queue: queue}
}

func (i *Indexer) Run(ctx context.Context) error {
	i.log.Info("Starting message indexer")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-i.queue:
			if err := i.index.Index(msg); err != nil {
				i.log.Error("Failed to index message", "message_id", msg.ID, "error", err)
			}
		}
	}
}
