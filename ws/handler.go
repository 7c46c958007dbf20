package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"grant-desk/contract"
	"grant-desk/observability"
)

// Handler upgrades HTTP requests to websocket connections and hands
// each one to its own Conn loop.
type Handler struct {
	log      *slog.Logger
	relay    contract.IRelay
	verifier contract.TokenVerifier
	searcher Searcher
	stats    *observability.RelayStats

	bufferSize int
	upgrader   websocket.Upgrader
}

func NewHandler(log *slog.Logger, relay contract.IRelay, verifier contract.TokenVerifier,
	stats *observability.RelayStats, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		relay:      relay,
		verifier:   verifier,
		stats:      stats,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth happens in-band on the first frame, the
			// browser origin adds nothing here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WithSearcher enables the searchHistory frame on new connections.
func (h *Handler) WithSearcher(s Searcher) *Handler {
	h.searcher = s
	return h
}

// ServeHTTP accepts one websocket client. The connection authenticates
// in-band with an auth frame; until then it holds no directory entry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	h.log.Debug("Websocket connection accepted", "remote", r.RemoteAddr)

	conn := NewConn(h.log, socket, h.relay, h.verifier, h.stats, h.bufferSize)
	if h.searcher != nil {
		conn.WithSearcher(h.searcher)
	}
	go conn.Run()
}
