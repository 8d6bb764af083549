package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the user master record. The gateway only ever reads it: identity
// resolution at handshake and display-attribute projection at enrichment.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubjectID string             `bson:"subject_id" json:"-"` // external identity provider subject
	Name      string             `bson:"name" json:"name"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar"`
	Email     string             `bson:"email,omitempty" json:"-"`

	CreateTime time.Time `bson:"create_time" json:"-"`
	UpdateTime time.Time `bson:"update_time" json:"-"`
}

func (u *User) UserID() string { return u.ID.Hex() }
