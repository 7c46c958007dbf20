package relay

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"grant-desk/contract"
	"grant-desk/domain"
	"grant-desk/errors"
	"grant-desk/moderation"
	"grant-desk/observability"
)

// Relay routes each sent message to the live connections that should
// receive a copy and appends the canonical record to the message log
// exactly once, before any delivery. Delivery itself happens outside
// the directory and log locks: sinks buffer, so a slow client never
// stalls the relay.
type Relay struct {
	log        *slog.Logger
	directory  contract.IDirectory
	messages   *MessageLog
	stats      *observability.RelayStats
	moderator  *moderation.Moderator
	indexQueue chan<- domain.ChatMessage
}

func NewRelay(log *slog.Logger, directory contract.IDirectory,
	messages *MessageLog, stats *observability.RelayStats) *Relay {
	return &Relay{
		log:       log,
		directory: directory,
		messages:  messages,
		stats:     stats,
	}
}

// WithModerator enables censorship of message bodies before they are
// appended to the log.
func (r *Relay) WithModerator(m *moderation.Moderator) *Relay {
	r.moderator = m
	return r
}

// WithIndexQueue forwards appended messages to the search indexer.
// The queue is written non-blockingly: indexing is best effort.
func (r *Relay) WithIndexQueue(q chan<- domain.ChatMessage) *Relay {
	r.indexQueue = q
	return r
}

// Attach registers an authenticated participant's connection. If the
// identifier already held a connection, the displaced one is closed
// rather than silently leaked (close-on-replace policy).
func (r *Relay) Attach(p domain.Participant, sink contract.Sink) {
	if displaced := r.directory.Register(p, sink); displaced != nil {
		r.log.Info("Replacing previous connection", "user_id", p.ID)
		_ = displaced.Close()
	}
	r.stats.SetLiveConnections(r.directory.Len())
}

// Detach removes the connection from the directory. Safe to call for
// sinks that were never attached or were already displaced.
func (r *Relay) Detach(sink contract.Sink) {
	r.directory.Unregister(sink)
	r.stats.SetLiveConnections(r.directory.Len())
}

// Send relays one message from an authenticated sender.
//
// Routing rules:
//   - admin with target: copy to the target's connection if online,
//     plus an echo to the sender;
//   - admin without target: logged, echoed to the sender only;
//   - user: copy to every connected admin, plus an echo to the sender.
//     No admin online is not an error, the message stays logged.
//
// The sender's role and identity come from the session directory, not
// from the wire. A user-supplied target is ignored: only admin sends
// are addressed.
func (r *Relay) Send(senderID, body string, targetID *string) (domain.ChatMessage, error) {
	sess, ok := r.directory.Lookup(senderID)
	if !ok {
		return domain.ChatMessage{}, errors.ErrUnknownSender
	}
	sender := sess.Participant

	lang := ""
	if r.moderator != nil {
		censored, found := r.moderator.Censor(body)
		if len(found) > 0 {
			lang = moderation.DetectLang(body)
			r.log.Warn("Censored message content",
				"sender_id", sender.ID, "matches", len(found), "lang", lang)
		}
		body = censored
	}

	msg := domain.ChatMessage{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		SenderRole: sender.Role,
		Body:       body,
		Lang:       lang,
		CreatedAt:  time.Now().UTC(),
	}
	if sender.IsAdmin() && targetID != nil {
		msg.TargetID = targetID
	}

	// Exactly one append per send, before any fan-out.
	if err := r.messages.Append(msg); err != nil {
		return domain.ChatMessage{}, err
	}
	r.stats.IncrRelayed()
	r.enqueueForIndex(msg)

	for _, sink := range r.recipientsFor(msg, sess) {
		r.deliver(sink, msg)
	}
	return msg, nil
}

// recipients snapshots the delivery set for a message: the sender's own
// connection always gets a copy so its UI reflects the send.
func (r *Relay) recipients(sess contract.Session) []contract.Sink {
	res := []contract.Sink{sess.Sink}

	if sess.Participant.IsAdmin() {
		// Broadcast-to-self is the documented no-target admin policy.
		return res
	}

	admins := r.directory.AllWithRole(domain.RoleAdmin)
	if len(admins) == 0 {
		r.log.Info("No admin connected, message logged only",
			"sender_id", sess.Participant.ID)
	}
	for _, admin := range admins {
		if admin.Sink == sess.Sink {
			continue
		}
		res = append(res, admin.Sink)
	}
	return res
}

// recipientsFor resolves the extra recipient of an addressed admin
// message. Kept separate from recipients because it depends on the
// message, not only on the sender.
func (r *Relay) recipientsFor(msg domain.ChatMessage, sess contract.Session) []contract.Sink {
	res := r.recipients(sess)
	if msg.TargetID == nil {
		return res
	}

	target, ok := r.directory.Lookup(*msg.TargetID)
	if !ok {
		r.log.Info("Target offline, message logged only", "target_id", *msg.TargetID)
		return res
	}
	if target.Sink == sess.Sink {
		return res
	}
	return append(res, target.Sink)
}

func (r *Relay) deliver(sink contract.Sink, msg domain.ChatMessage) {
	if err := sink.Deliver(msg); err != nil {
		r.stats.IncrDropped()
		r.log.Warn("Dropped message copy", "message_id", msg.ID, "error", err)
		return
	}
	r.stats.IncrDelivered(1)
}

func (r *Relay) enqueueForIndex(msg domain.ChatMessage) {
	if r.indexQueue == nil {
		return
	}
	select {
	case r.indexQueue <- msg:
	default:
		r.log.Debug("Search index queue full, skipping message", "message_id", msg.ID)
	}
}

// ReplayFor returns the history replayed to a freshly authenticated
// connection: full log for admins, own conversation for applicants.
func (r *Relay) ReplayFor(p domain.Participant) []domain.ChatMessage {
	return r.messages.VisibleTo(p)
}

// Conversation returns the exchange between two identifiers, oldest
// first. Unknown pairs yield an empty list.
func (r *Relay) Conversation(requesterID, targetID string) []domain.ChatMessage {
	return r.messages.Conversation(requesterID, targetID)
}
