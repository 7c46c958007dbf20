// Package search maintains a full-text index over the chat history so
// administrators can find past exchanges by content.
package search

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/blugelabs/bluge"

	"grant-desk/domain"
)

const defaultSearchLimit = 50

// MessageIndex wraps a Bluge writer. The message body is analyzed for
// matching; the full record rides along as a stored field so hits can
// be returned without a second lookup.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index adds or replaces one message in the index, keyed by message id.
func (i *MessageIndex) Index(msg domain.ChatMessage) error {
	record, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("body", msg.Body)).
		AddField(bluge.NewKeywordField("sender", msg.SenderID)).
		AddField(bluge.NewStoredOnlyField("record", record))

	return i.writer.Update(doc.ID(), doc)
}

// SearchMessages returns the messages whose body matches the query,
// best match first. A non-positive limit falls back to the default.
func (i *MessageIndex) SearchMessages(query string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	match := bluge.NewMatchQuery(query).SetField("body")
	request := bluge.NewTopNSearch(limit, match)

	iterator, err := reader.Search(context.Background(), request)
	if err != nil {
		return nil, err
	}

	var hits []domain.ChatMessage
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}

		var record []byte
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "record" {
				record = append([]byte(nil), value...)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}

		var msg domain.ChatMessage
		if err := json.Unmarshal(record, &msg); err != nil {
			i.log.Warn("Skipping unreadable index record", "error", err)
			continue
		}
		hits = append(hits, msg)
	}
	return hits, nil
}
