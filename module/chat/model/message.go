package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is immutable once written. Sender display attributes are not stored
// here; they are projected on at read time (see EnrichedMessage).
type Message struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	ChatID   primitive.ObjectID `bson:"chat_id"`
	SenderID primitive.ObjectID `bson:"sender_id"`
	Text     string             `bson:"text"`

	CreateTime time.Time `bson:"create_time"`
}

// Sender is the read-time projection of the sending user's display attributes.
type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// EnrichedMessage is the broadcast form of a persisted message: same id, chat,
// text and timestamp as the stored record plus the sender projection.
type EnrichedMessage struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Message) MessageID() string { return m.ID.Hex() }
