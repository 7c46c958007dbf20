// Package ws exposes the support chat over a websocket endpoint. Each
// connection exchanges JSON frames, one frame per logical message,
// decoded once at the boundary into typed values before dispatch.
package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"grant-desk/domain"
	"grant-desk/errors"
)

type FrameType string

// Inbound frame types.
const (
	FrameAuth          FrameType = "auth"
	FrameSend          FrameType = "send"
	FrameGetHistory    FrameType = "getHistory"
	FrameSearchHistory FrameType = "searchHistory"
)

// Outbound frame types.
const (
	FrameAuthError    FrameType = "auth-error"
	FrameHistory      FrameType = "history"
	FrameMessage      FrameType = "message"
	FrameError        FrameType = "error"
	FrameSearchResult FrameType = "search-result"
)

// InboundFrame is the decoded client frame. Which fields are meaningful
// depends on Type; DecodeInbound enforces the per-type requirements.
type InboundFrame struct {
	Type         FrameType `json:"type"`
	Token        string    `json:"token,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	SenderRole   string    `json:"senderRole,omitempty"`
	Message      string    `json:"message,omitempty"`
	TargetUserID *string   `json:"targetUserId,omitempty"`
	Query        string    `json:"query,omitempty"`
	Limit        int       `json:"limit,omitempty"`
}

// DecodeInbound parses a raw frame and validates the fields its type
// requires. Every failure wraps ErrMalformedFrame so the caller can
// log and ignore without closing the connection.
func DecodeInbound(raw []byte) (InboundFrame, error) {
	var f InboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return InboundFrame{}, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}

	switch f.Type {
	case FrameAuth:
		if f.Token == "" {
			return InboundFrame{}, fmt.Errorf("%w: auth frame without token", errors.ErrMalformedFrame)
		}
	case FrameSend:
		if f.Message == "" {
			return InboundFrame{}, fmt.Errorf("%w: send frame without message", errors.ErrMalformedFrame)
		}
	case FrameGetHistory:
		if f.TargetUserID == nil || *f.TargetUserID == "" {
			return InboundFrame{}, fmt.Errorf("%w: getHistory frame without targetUserId", errors.ErrMalformedFrame)
		}
	case FrameSearchHistory:
		if f.Query == "" {
			return InboundFrame{}, fmt.Errorf("%w: searchHistory frame without query", errors.ErrMalformedFrame)
		}
	default:
		return InboundFrame{}, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedFrame, f.Type)
	}
	return f, nil
}

// WireMessage is the outbound representation of a chat message.
type WireMessage struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	SenderRole   domain.Role `json:"senderRole"`
	Message      string      `json:"message"`
	TargetUserID *string     `json:"targetUserId,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func toWire(msg domain.ChatMessage) WireMessage {
	return WireMessage{
		ID:           msg.ID.String(),
		UserID:       msg.SenderID,
		SenderRole:   msg.SenderRole,
		Message:      msg.Body,
		TargetUserID: msg.TargetID,
		CreatedAt:    msg.CreatedAt,
	}
}

func toWireList(messages []domain.ChatMessage) []WireMessage {
	res := make([]WireMessage, 0, len(messages))
	for _, msg := range messages {
		res = append(res, toWire(msg))
	}
	return res
}

// MessageFrame carries one delivered copy of a sent message.
type MessageFrame struct {
	Type FrameType `json:"type"`
	WireMessage
}

func NewMessageFrame(msg domain.ChatMessage) MessageFrame {
	return MessageFrame{Type: FrameMessage, WireMessage: toWire(msg)}
}

// HistoryFrame carries a full or conversation history, oldest first.
type HistoryFrame struct {
	Type     FrameType     `json:"type"`
	Messages []WireMessage `json:"messages"`
}

func NewHistoryFrame(messages []domain.ChatMessage) HistoryFrame {
	return HistoryFrame{Type: FrameHistory, Messages: toWireList(messages)}
}

// ErrorFrame notifies the client of a non-fatal or fatal condition; the
// type distinguishes the two.
type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Message string    `json:"message"`
}

func NewAuthErrorFrame(reason string) ErrorFrame {
	return ErrorFrame{Type: FrameAuthError, Message: reason}
}

func NewErrorFrame(reason string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Message: reason}
}

// SearchResultFrame carries the hits of a full-text history search.
type SearchResultFrame struct {
	Type     FrameType     `json:"type"`
	Query    string        `json:"query"`
	Messages []WireMessage `json:"messages"`
}

func NewSearchResultFrame(query string, messages []domain.ChatMessage) SearchResultFrame {
	return SearchResultFrame{Type: FrameSearchResult, Query: query, Messages: toWireList(messages)}
}
