// Package internal hosts the development-only BadgerDB inspector, a
// small HTML dashboard over the persisted chat log.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"grant-desk/domain"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Timestamp string
	Sender    string
	Role      string
	Target    string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves the inspector on its own port, in a separate
// goroutine. Development tool only, never exposed in production.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// MessageMapper renders persisted chat messages.
func MessageMapper(key string, val []byte) InspectRow {
	var msg domain.ChatMessage
	if err := json.Unmarshal(val, &msg); err != nil {
		row := DefaultMapper(key, val)
		row.Detail = "Error: unmarshal failed"
		return row
	}

	target := ""
	if msg.TargetID != nil {
		target = *msg.TargetID
	}

	return InspectRow{
		Key:       key,
		Timestamp: msg.CreatedAt.Format("15:04:05"),
		Sender:    msg.SenderID,
		Role:      string(msg.SenderRole),
		Target:    target,
		Detail:    msg.Body,
	}
}

// DefaultMapper falls back to raw key structure when the value cannot
// be decoded.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Timestamp: "--:--:--",
		Sender:    "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	if len(parts) >= 3 {
		if tsNano, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
		row.Sender = parts[2]
		if len(row.Sender) > 8 {
			row.Sender = row.Sender[:8]
		}
	}
	return row
}
