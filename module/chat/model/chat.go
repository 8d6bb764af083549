package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a conversation and its membership list. Participants are the unit
// of authorization: every join/send re-checks against this list in the store,
// never against gateway-side state.
type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants  []primitive.ObjectID `bson:"participants" json:"participants"`
	LastMessageID primitive.ObjectID   `bson:"last_message_id,omitempty" json:"lastMessageId,omitempty"`
	LastMessageAt time.Time            `bson:"last_message_at,omitempty" json:"lastMessageAt,omitempty"`

	CreateTime time.Time `bson:"create_time" json:"-"`
	UpdateTime time.Time `bson:"update_time" json:"-"`
}

func (c *Chat) ChatID() string { return c.ID.Hex() }

// ParticipantIDs preserves the stored order; fan-out follows it.
func (c *Chat) ParticipantIDs() []string {
	out := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		out = append(out, p.Hex())
	}
	return out
}
