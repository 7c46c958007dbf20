package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"grant-desk/domain"
	"grant-desk/errors"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    FrameType
		wantErr bool
	}{
		{
			name: "valid auth frame",
			raw:  `{"type":"auth","token":"abc","userId":"u1"}`,
			want: FrameAuth,
		},
		{
			name: "valid send frame",
			raw:  `{"type":"send","userId":"u1","senderRole":"user","message":"hello"}`,
			want: FrameSend,
		},
		{
			name: "valid targeted send frame",
			raw:  `{"type":"send","message":"hi","targetUserId":"u1"}`,
			want: FrameSend,
		},
		{
			name: "valid getHistory frame",
			raw:  `{"type":"getHistory","userId":"a1","targetUserId":"u1"}`,
			want: FrameGetHistory,
		},
		{
			name: "valid searchHistory frame",
			raw:  `{"type":"searchHistory","query":"deadline"}`,
			want: FrameSearchHistory,
		},
		{
			name:    "broken json",
			raw:     `{"type":"send",`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			raw:     `{"type":"subscribe"}`,
			wantErr: true,
		},
		{
			name:    "auth without token",
			raw:     `{"type":"auth","userId":"u1"}`,
			wantErr: true,
		},
		{
			name:    "send without message",
			raw:     `{"type":"send","userId":"u1"}`,
			wantErr: true,
		},
		{
			name:    "getHistory without target",
			raw:     `{"type":"getHistory","userId":"a1"}`,
			wantErr: true,
		},
		{
			name:    "searchHistory without query",
			raw:     `{"type":"searchHistory"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			frame, err := DecodeInbound([]byte(tt.raw))

			if tt.wantErr {
				req.ErrorIs(err, errors.ErrMalformedFrame)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, frame.Type)
		})
	}
}

func TestMessageFrame_WireShape(t *testing.T) {
	req := require.New(t)

	msg := domain.ChatMessage{
		ID:         uuid.New(),
		SenderID:   "a1",
		SenderRole: domain.RoleAdmin,
		Body:       "hi",
		TargetID:   lo.ToPtr("u1"),
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(NewMessageFrame(msg))
	req.NoError(err)

	var decoded map[string]any
	req.NoError(json.Unmarshal(raw, &decoded))
	req.Equal("message", decoded["type"])
	req.Equal("a1", decoded["userId"])
	req.Equal("admin", decoded["senderRole"])
	req.Equal("hi", decoded["message"])
	req.Equal("u1", decoded["targetUserId"])
}

func TestMessageFrame_OmitsEmptyTarget(t *testing.T) {
	req := require.New(t)

	msg := domain.ChatMessage{ID: uuid.New(), SenderID: "u1", SenderRole: domain.RoleUser, Body: "hello"}
	raw, err := json.Marshal(NewMessageFrame(msg))
	req.NoError(err)
	req.NotContains(string(raw), "targetUserId")
}

func TestHistoryFrame_EmptyHistoryIsAList(t *testing.T) {
	req := require.New(t)

	// An empty history must serialize as [], never null, so clients can
	// iterate without a nil check
	raw, err := json.Marshal(NewHistoryFrame(nil))
	req.NoError(err)
	req.Contains(string(raw), `"messages":[]`)
}
