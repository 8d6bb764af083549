package chat

import (
	"context"

	"github.com/Piyash1/AstroChat-Mobile/module/chat/model"
	usermodel "github.com/Piyash1/AstroChat-Mobile/module/user/model"
)

// TokenVerifier validates a bearer token and returns the subject identifier.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// UserDirectory resolves subjects to internal user records.
type UserDirectory interface {
	FindBySubject(ctx context.Context, subjectID string) (*usermodel.User, error)
}

// ConversationStore is the persistence collaborator. FindChat filters by
// membership, CreateMessage persists the message and chat update as one
// logical step, EnrichSender projects display attributes at read time.
type ConversationStore interface {
	FindChat(ctx context.Context, chatID, participantID string) (*model.Chat, error)
	CreateMessage(ctx context.Context, chat *model.Chat, senderID, text string) (*model.Message, error)
	EnrichSender(ctx context.Context, msg *model.Message) (*model.EnrichedMessage, error)
}

// EventPublisher mirrors persisted messages onto a broker for downstream
// consumers. Optional; fan-out never depends on it.
type EventPublisher interface {
	PublishJSON(subject string, v any) error
}
