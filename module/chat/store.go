package chat

import (
	"context"
	"time"

	mgo "github.com/Piyash1/AstroChat-Mobile/data/mongo"
	"github.com/Piyash1/AstroChat-Mobile/module/chat/model"
	"github.com/Piyash1/AstroChat-Mobile/module/user"
	usermodel "github.com/Piyash1/AstroChat-Mobile/module/user/model"
	"github.com/Piyash1/AstroChat-Mobile/tools/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	pkgerrors "github.com/pkg/errors"
)

const (
	ChatsCollection    = "chats"
	MessagesCollection = "messages"
)

// Store is the conversation store: chats, messages and the sender projection.
// It is the single source of truth for participant authorization.
type Store struct {
	client *mgo.Client
	chats  *mongo.Collection
	msgs   *mongo.Collection
	users  *mongo.Collection
}

func NewStore(client *mgo.Client) *Store {
	db := client.GetDB()
	return &Store{
		client: client,
		chats:  db.Collection(ChatsCollection),
		msgs:   db.Collection(MessagesCollection),
		users:  db.Collection(user.CollectionName),
	}
}

// FindChat looks the chat up filtered by membership, so "no such chat" and
// "not a participant" are indistinguishable to the caller.
func (s *Store) FindChat(ctx context.Context, chatID, participantID string) (*model.Chat, error) {
	chatOID, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, errs.ErrChatNotFound.WrapMsg("bad chat id", "chatID", chatID)
	}
	userOID, err := primitive.ObjectIDFromHex(participantID)
	if err != nil {
		return nil, errs.ErrChatNotFound.WrapMsg("bad participant id", "userID", participantID)
	}

	var c model.Chat
	err = s.chats.FindOne(ctx, bson.M{"_id": chatOID, "participants": userOID}).Decode(&c)
	if pkgerrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrChatNotFound.WrapMsg("chat missing or not a member", "chatID", chatID, "userID", participantID)
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "find chat", "chatID", chatID)
	}
	return &c, nil
}

// CreateMessage persists the message and advances the chat's last-message
// pointer and activity timestamp in one transaction; either both writes land
// or neither does.
func (s *Store) CreateMessage(ctx context.Context, chat *model.Chat, senderID, text string) (*model.Message, error) {
	senderOID, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, errs.ErrPersistence.WrapMsg("bad sender id", "senderID", senderID)
	}

	msg := &model.Message{
		ID:         primitive.NewObjectID(),
		ChatID:     chat.ID,
		SenderID:   senderOID,
		Text:       text,
		CreateTime: time.Now(),
	}

	_, err = s.client.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := s.msgs.InsertOne(sc, msg); err != nil {
			return nil, err
		}
		update := bson.M{"$set": bson.M{
			"last_message_id": msg.ID,
			"last_message_at": msg.CreateTime,
			"update_time":     msg.CreateTime,
		}}
		if _, err := s.chats.UpdateByID(sc, chat.ID, update); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, errs.ErrPersistence.WrapMsg("create message", "chatID", chat.ChatID(), "err", err)
	}
	return msg, nil
}

// EnrichSender projects the sender's current name and avatar onto a persisted
// message. The projection reflects the directory at enrichment time; nothing
// is written back.
func (s *Store) EnrichSender(ctx context.Context, msg *model.Message) (*model.EnrichedMessage, error) {
	var u usermodel.User
	err := s.users.FindOne(ctx, bson.M{"_id": msg.SenderID}).Decode(&u)
	if pkgerrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errs.ErrPersistence.WrapMsg("sender vanished", "senderID", msg.SenderID.Hex())
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "enrich sender", "senderID", msg.SenderID.Hex())
	}
	return &model.EnrichedMessage{
		ID:     msg.MessageID(),
		ChatID: msg.ChatID.Hex(),
		Sender: model.Sender{
			ID:     u.UserID(),
			Name:   u.Name,
			Avatar: u.AvatarURL,
		},
		Text:      msg.Text,
		CreatedAt: msg.CreateTime,
	}, nil
}
