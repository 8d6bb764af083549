package chat

import (
	"encoding/json"

	"github.com/Piyash1/AstroChat-Mobile/module/chat/model"
	decode "github.com/Piyash1/AstroChat-Mobile/tools/decode"

	"github.com/pkg/errors"
)

// Inbound event names.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
)

// Outbound event names.
const (
	EventOnlineUsers      = "online-users"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventNewMessage       = "new-message"
	EventError            = "error"
)

// Frame is one multiplexed event on the wire, both directions:
// {"event": "...", "data": {...}}.
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// OutFrame carries an already-typed payload outbound.
type OutFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (f *OutFrame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

func ParseFrameJSON(raw []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(raw, frame); err != nil {
		return nil, errors.Wrap(err, "unmarshal frame")
	}
	if frame.Event == "" {
		return nil, errors.New("frame has no event")
	}
	return frame, nil
}

// ---- inbound payloads ----

type RoomPayload struct {
	ChatID string `json:"chatId"`
}

type SendMessagePayload struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

func DecodeRoomPayload(f *Frame) (*RoomPayload, error) {
	return decode.DecodeMap[RoomPayload](f.Data)
}

func DecodeSendMessagePayload(f *Frame) (*SendMessagePayload, error) {
	return decode.DecodeMap[SendMessagePayload](f.Data)
}

// ---- outbound builders ----

func BuildOnlineUsers(userIDs []string) *OutFrame {
	if userIDs == nil {
		userIDs = []string{}
	}
	return &OutFrame{Event: EventOnlineUsers, Data: map[string]any{"userIds": userIDs}}
}

func BuildUserConnected(userID string) *OutFrame {
	return &OutFrame{Event: EventUserConnected, Data: map[string]any{"userId": userID}}
}

func BuildUserDisconnected(userID string) *OutFrame {
	return &OutFrame{Event: EventUserDisconnected, Data: map[string]any{"userId": userID}}
}

func BuildNewMessage(msg *model.EnrichedMessage) *OutFrame {
	return &OutFrame{Event: EventNewMessage, Data: msg}
}

func BuildError(message string) *OutFrame {
	return &OutFrame{Event: EventError, Data: map[string]any{"message": message}}
}
