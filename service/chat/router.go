package chat

import (
	"github.com/Piyash1/AstroChat-Mobile/logger"
	"github.com/Piyash1/AstroChat-Mobile/module/chat/model"

	"go.uber.org/zap"
)

// Router fans events out to connections through the presence table. Offline
// recipients are silently skipped: no queuing, no error.
type Router struct {
	presence *PresenceTable
}

func NewRouter(presence *PresenceTable) *Router {
	return &Router{presence: presence}
}

// DeliverToUser routes one event to the user's registered connection, if any.
func (r *Router) DeliverToUser(userID string, f *OutFrame) {
	c, ok := r.presence.Get(userID)
	if !ok {
		return
	}
	c.Deliver(f)
}

// DeliverToAllExcept sends to every registered connection but the excluded
// one. Used for connect/disconnect presence announcements.
func (r *Router) DeliverToAllExcept(f *OutFrame, excluded *Client) {
	data, err := f.Encode()
	if err != nil {
		logger.Error("encode frame", zap.String("event", f.Event), zap.Error(err))
		return
	}
	for _, c := range r.presence.Clients() {
		if c == excluded {
			continue
		}
		c.Enqueue(data)
	}
}

// DeliverToChatParticipants routes one event to every participant of the
// chat, in the order the participant list is stored. Whoever is registered in
// the presence table receives it, current room subscription or not; that
// includes the sender's own connection.
func (r *Router) DeliverToChatParticipants(chat *model.Chat, f *OutFrame) {
	data, err := f.Encode()
	if err != nil {
		logger.Error("encode frame", zap.String("event", f.Event), zap.Error(err))
		return
	}
	for _, userID := range chat.ParticipantIDs() {
		c, ok := r.presence.Get(userID)
		if !ok {
			continue
		}
		c.Enqueue(data)
	}
}
