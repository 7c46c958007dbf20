// Package domain contains core concepts of the grant support system.
// This file defines ChatMessage events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents an immutable support chat event.
// TargetID is present only on admin messages addressed to a specific
// applicant; a user message carries no target and is directed at
// whichever admins are online.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderRole Role      `json:"senderRole"`
	Body       string    `json:"message"`
	TargetID   *string   `json:"targetUserId,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VisibleTo reports whether a participant may see this message during
// a history replay. Admins see everything; applicants see only the
// messages they sent or that were addressed to them.
func (m ChatMessage) VisibleTo(p Participant) bool {
	if p.IsAdmin() {
		return true
	}
	if m.SenderID == p.ID {
		return true
	}
	return m.TargetID != nil && *m.TargetID == p.ID
}

// InConversation reports whether the message belongs to the exchange
// between two identifiers, in either direction.
func (m ChatMessage) InConversation(a, b string) bool {
	if m.TargetID == nil {
		return false
	}
	return (m.SenderID == a && *m.TargetID == b) ||
		(m.SenderID == b && *m.TargetID == a)
}
