package core

import (
	"encoding/json"
	"time"

	"github.com/dkeye/VoipWeb/internal/domain"
)

// Inbound event names.
const (
	EvJoin         = "join"
	EvLeave        = "leave"
	EvTextMessage  = "text_message"
	EvCallUser     = "call_user"
	EvCallAnswer   = "call_answer"
	EvWebRTCSignal = "webrtc_signal"
	EvHangup       = "hangup"
	EvListUsers    = "list_users"
	EvRename       = "rename"
	EvPing         = "ping"
)

// Outbound event names. text_message and webrtc_signal are shared with inbound.
const (
	EvWelcome      = "welcome"
	EvJoinSuccess  = "join_success"
	EvUserJoined   = "user_joined"
	EvUserLeft     = "user_left"
	EvUserUpdated  = "user_updated"
	EvUserList     = "user_list"
	EvLeft         = "left"
	EvIncomingCall = "incoming_call"
	EvCallRinging  = "call_ringing"
	EvCallAccepted = "call_accepted"
	EvCallRejected = "call_rejected"
	EvCallEnded    = "call_ended"
	EvPong         = "pong"
	EvError        = "error"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRequest struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type TextMessageRequest struct {
	Body string `json:"body"`
}

type CallUserRequest struct {
	CalleeID  domain.ConnID `json:"calleeId"`
	MediaKind string        `json:"mediaKind"`
}

type CallAnswerRequest struct {
	CallID domain.CallID `json:"callId"`
	Accept *bool         `json:"accept"`
}

type WebRTCSignalRequest struct {
	ToID    domain.ConnID   `json:"toId"`
	Payload json.RawMessage `json:"payload"`
}

type HangupRequest struct {
	CallID domain.CallID `json:"callId"`
}

type RenameRequest struct {
	DisplayName string `json:"displayName"`
}

type Welcome struct {
	ConnectionID domain.ConnID `json:"connectionId"`
	DisplayName  string        `json:"displayName"`
}

type JoinSuccess struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Self    domain.Member   `json:"self"`
	Members []domain.Member `json:"members"`
}

type UserList struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Members []domain.Member `json:"members"`
}

type Left struct {
	RoomID domain.RoomID `json:"roomId"`
}

type TextMessage struct {
	FromID   domain.ConnID `json:"fromId"`
	FromName string        `json:"fromName"`
	Body     string        `json:"body"`
	SentAt   time.Time     `json:"sentAt"`
}

type IncomingCall struct {
	CallID    domain.CallID    `json:"callId"`
	FromID    domain.ConnID    `json:"fromId"`
	FromName  string           `json:"fromName"`
	MediaKind domain.MediaKind `json:"mediaKind"`
}

type CallRinging struct {
	CallID    domain.CallID    `json:"callId"`
	ToID      domain.ConnID    `json:"toId"`
	MediaKind domain.MediaKind `json:"mediaKind"`
}

// CallUpdate carries call_accepted, call_rejected and call_ended.
type CallUpdate struct {
	CallID domain.CallID `json:"callId"`
	Reason string        `json:"reason,omitempty"`
}

type WebRTCSignal struct {
	FromID  domain.ConnID   `json:"fromId"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Event   string `json:"event,omitempty"`
}

// Call end reasons.
const (
	ReasonHangup     = "hangup"
	ReasonDisconnect = "disconnect"
	ReasonTimeout    = "timeout"
	ReasonDeclined   = "declined"
)
