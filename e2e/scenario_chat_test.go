package e2e

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type testChatSuite struct {
	BaseSuite
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, &testChatSuite{})
}

// TestSupportConversation walks the full applicant/admin exchange over
// real websocket connections.
func (s *testChatSuite) TestSupportConversation() {
	applicantToken := s.register("applicant@example.com")

	participant, err := s.tokens.Verify(applicantToken)
	s.Require().NoError(err)

	var applicant, admin *wsClient

	s.Run("Step 1: Applicant and admin connect and authenticate", func() {
		applicant = s.dial(applicantToken)
		admin = s.dial(s.adminToken("admin-1"))
	})

	s.Run("Step 2: Applicant message reaches the admin and echoes back", func() {
		applicant.send(map[string]any{"type": "send", "message": "hello, I need help"})

		echo := applicant.read()
		s.Require().Equal("message", echo["type"])
		s.Require().Equal("hello, I need help", echo["message"])
		s.Require().Equal(participant.ID, echo["userId"])

		received := admin.read()
		s.Require().Equal("message", received["type"])
		s.Require().Equal(participant.ID, received["userId"])
	})

	s.Run("Step 3: Admin replies to the applicant only", func() {
		admin.send(map[string]any{
			"type":         "send",
			"message":      "hi, how can I help?",
			"targetUserId": participant.ID,
		})

		reply := applicant.read()
		s.Require().Equal("message", reply["type"])
		s.Require().Equal("hi, how can I help?", reply["message"])
		s.Require().Equal("admin", reply["senderRole"])

		echo := admin.read()
		s.Require().Equal("message", echo["type"])
	})

	s.Run("Step 4: Conversation history returns the exchange in order", func() {
		admin.send(map[string]any{
			"type":         "getHistory",
			"userId":       "admin-1",
			"targetUserId": participant.ID,
		})

		history := admin.read()
		s.Require().Equal("history", history["type"])

		messages, ok := history["messages"].([]any)
		s.Require().True(ok)
		s.Require().Len(messages, 1)

		first, ok := messages[0].(map[string]any)
		s.Require().True(ok)
		s.Require().Equal("hi, how can I help?", first["message"])
	})

	s.Run("Step 5: A fresh admin connection replays the full log", func() {
		second := s.dialRaw(s.adminToken("admin-2"))

		replay := second.read()
		s.Require().Equal("history", replay["type"])

		messages, ok := replay["messages"].([]any)
		s.Require().True(ok)
		s.Require().Len(messages, 2)
	})

	s.Run("Step 6: Unauthenticated frames are rejected without closing", func() {
		stray := s.dialUnauthenticated()
		stray.send(map[string]any{"type": "send", "message": "sneaky"})

		rejection := stray.read()
		s.Require().Equal("error", rejection["type"])
		s.Require().Equal("user not authenticated", rejection["message"])
	})
}
