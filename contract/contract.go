//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"grant-desk/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Sink is the delivery side of a live connection. Deliver must never
// block the relay: implementations buffer outbound messages and drop
// on overflow. Close is idempotent.
type Sink interface {
	Deliver(msg domain.ChatMessage) error
	Close() error
}

// Session binds an authenticated participant to its live connection.
type Session struct {
	Participant domain.Participant
	Sink        Sink
}

// IDirectory is the live mapping from participant identifier to active
// connection. One entry per identifier; registering an identifier that
// already has an entry displaces the previous sink, which Register
// returns so the caller can close it.
type IDirectory interface {
	Register(p domain.Participant, sink Sink) (displaced Sink)
	Lookup(id string) (Session, bool)
	Unregister(sink Sink)
	AllWithRole(role domain.Role) []Session
	Len() int
}

// IRelay distributes sent messages to live connections and answers
// history queries against the message log.
type IRelay interface {
	Send(senderID, body string, targetID *string) (domain.ChatMessage, error)
	Attach(p domain.Participant, sink Sink)
	Detach(sink Sink)
	ReplayFor(p domain.Participant) []domain.ChatMessage
	Conversation(requesterID, targetID string) []domain.ChatMessage
}

// TokenVerifier is the authentication collaborator consulted during
// the connection handshake.
type TokenVerifier interface {
	Verify(token string) (domain.Participant, error)
}
