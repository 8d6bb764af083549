package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Piyash1/AstroChat-Mobile/logger"
	"github.com/Piyash1/AstroChat-Mobile/service/natsx"
	"github.com/Piyash1/AstroChat-Mobile/tools/errs"
	"github.com/Piyash1/AstroChat-Mobile/tools/safe"

	"go.uber.org/zap"
)

const MaxTextLength = 2000

// Session is the per-connection state machine while the connection is Active.
// It is driven by the connection's read loop, one inbound action at a time;
// the subscription set is therefore private to this goroutine and needs no
// locking. Every action re-validates from the store: nothing learned from a
// prior action is trusted.
type Session struct {
	client *Client
	userID string
	subs   map[string]struct{}

	store     ConversationStore
	router    *Router
	publisher EventPublisher
}

func NewSession(client *Client, store ConversationStore, router *Router, publisher EventPublisher) *Session {
	return &Session{
		client:    client,
		userID:    client.UserID,
		subs:      make(map[string]struct{}),
		store:     store,
		router:    router,
		publisher: publisher,
	}
}

func (s *Session) UserID() string { return s.userID }

// Subscribed reports whether the session currently watches chatID.
func (s *Session) Subscribed(chatID string) bool {
	_, ok := s.subs[chatID]
	return ok
}

// HandleFrame dispatches one inbound event. Failures of any kind, panics
// included, are reported to this connection only and never tear it down.
func (s *Session) HandleFrame(ctx context.Context, f *Frame) {
	err := safe.Run(func() error {
		switch f.Event {
		case EventJoinRoom:
			return s.handleJoinRoom(ctx, f)
		case EventLeaveRoom:
			return s.handleLeaveRoom(f)
		case EventSendMessage:
			return s.handleSendMessage(ctx, f)
		case EventTyping:
			// TODO: fan out typing indicators to room subscribers
			return nil
		default:
			logger.Debug("unknown event ignored",
				zap.String("event", f.Event), zap.String("userID", s.userID))
			return nil
		}
	})
	if err != nil {
		s.reportError(f.Event, err)
	}
}

func (s *Session) handleJoinRoom(ctx context.Context, f *Frame) error {
	p, err := DecodeRoomPayload(f)
	if err != nil {
		return errs.NewCodeError(errs.ValidationErrorCode, "Failed to join chat").WrapMsg("decode payload", "err", err)
	}
	if _, err := s.store.FindChat(ctx, p.ChatID, s.userID); err != nil {
		return err
	}
	// idempotent if already subscribed
	s.subs[p.ChatID] = struct{}{}
	return nil
}

// Leaving needs no authorization check: it is always safe.
func (s *Session) handleLeaveRoom(f *Frame) error {
	p, err := DecodeRoomPayload(f)
	if err != nil {
		return errs.NewCodeError(errs.ValidationErrorCode, "Failed to leave chat").WrapMsg("decode payload", "err", err)
	}
	delete(s.subs, p.ChatID)
	return nil
}

func (s *Session) handleSendMessage(ctx context.Context, f *Frame) error {
	p, err := DecodeSendMessagePayload(f)
	if err != nil {
		return errs.ErrPersistence.WrapMsg("decode payload", "err", err)
	}

	text := strings.TrimSpace(p.Text)
	if text == "" {
		return errs.ErrEmptyText.WrapMsg("empty after trim")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return errs.ErrTextTooLong.WrapMsg("too long", "len", utf8.RuneCountInString(text))
	}

	// authorization is re-checked per send, never cached from a prior join
	chat, err := s.store.FindChat(ctx, p.ChatID, s.userID)
	if err != nil {
		return err
	}

	msg, err := s.store.CreateMessage(ctx, chat, s.userID, text)
	if err != nil {
		return err
	}

	enriched, err := s.store.EnrichSender(ctx, msg)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if perr := s.publisher.PublishJSON(natsx.SubjectMessageCreated, enriched); perr != nil {
			logger.Warn("publish message event",
				zap.String("messageID", enriched.ID), zap.Error(perr))
		}
	}

	// every participant, online or room-joined or not; offline ones miss it
	s.router.DeliverToChatParticipants(chat, BuildNewMessage(enriched))
	return nil
}

// DropSubscriptions clears the subscription set on disconnect; no leave
// events are emitted for them.
func (s *Session) DropSubscriptions() {
	s.subs = make(map[string]struct{})
}

func (s *Session) reportError(event string, err error) {
	msg := "Failed to process event"
	if ce := errs.CodeOf(err); ce != nil && ce.Code != errs.ServerInternalError {
		msg = ce.Msg
	}
	logger.Info("action rejected",
		zap.String("event", event), zap.String("userID", s.userID),
		zap.String("connID", s.client.ConnID), zap.Error(err))
	s.client.Deliver(BuildError(msg))
}
