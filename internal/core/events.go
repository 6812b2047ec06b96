package core

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/domain"
)

// Outbound event types.
const (
	EventJoined          = "joined"
	EventPeerJoined      = "peerJoined"
	EventPeerLeft        = "peerLeft"
	EventSignal          = "signal"
	EventPeerUnreachable = "peerUnreachable"
	EventYouWereKicked   = "youWereKicked"
	EventRoomEnded       = "roomEnded"
	EventLeft            = "left"
	EventError           = "error"
	EventAuthenticated   = "authenticated"
	EventPong            = "pong"
	EventWhoAmI          = "whoami"
	EventRoomUsers       = "roomUsers"
)

// Peer is the public view of a presence entry.
type Peer struct {
	ConnectionID domain.ConnectionID `json:"connectionId"`
	UserID       domain.UserID       `json:"userId"`
	DisplayName  string              `json:"displayName"`
}

func PeerOf(e domain.PresenceEntry) Peer {
	return Peer{ConnectionID: e.ConnectionID, UserID: e.UserID, DisplayName: e.DisplayName}
}

type JoinedEvent struct {
	Type             string              `json:"type"`
	RoomID           domain.RoomID       `json:"roomId"`
	SelfConnectionID domain.ConnectionID `json:"selfConnectionId"`
	Peers            []Peer              `json:"peers"`
}

type PeerJoinedEvent struct {
	Type string `json:"type"`
	Peer
}

type PeerLeftEvent struct {
	Type         string              `json:"type"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
	UserID       domain.UserID       `json:"userId"`
}

// SignalEvent carries an opaque negotiation payload. The relay never looks inside.
type SignalEvent struct {
	Type    string              `json:"type"`
	From    domain.ConnectionID `json:"from"`
	Payload json.RawMessage     `json:"payload"`
}

type PeerUnreachableEvent struct {
	Type         string              `json:"type"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
}

// RoomEvent is used for youWereKicked, roomEnded and left.
type RoomEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

// RoomUsersEvent lists a room's live peers and its durable participants.
type RoomUsersEvent struct {
	Type         string          `json:"type"`
	RoomID       domain.RoomID   `json:"roomId"`
	Peers        []Peer          `json:"peers"`
	Participants []domain.UserID `json:"participants"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewJoined(room domain.RoomID, self domain.ConnectionID, peers []Peer) JoinedEvent {
	if peers == nil {
		peers = []Peer{}
	}
	return JoinedEvent{Type: EventJoined, RoomID: room, SelfConnectionID: self, Peers: peers}
}

func NewPeerJoined(e domain.PresenceEntry) PeerJoinedEvent {
	return PeerJoinedEvent{Type: EventPeerJoined, Peer: PeerOf(e)}
}

func NewPeerLeft(e domain.PresenceEntry) PeerLeftEvent {
	return PeerLeftEvent{Type: EventPeerLeft, ConnectionID: e.ConnectionID, UserID: e.UserID}
}

func NewSignal(from domain.ConnectionID, payload json.RawMessage) SignalEvent {
	return SignalEvent{Type: EventSignal, From: from, Payload: payload}
}

func NewPeerUnreachable(target domain.ConnectionID) PeerUnreachableEvent {
	return PeerUnreachableEvent{Type: EventPeerUnreachable, ConnectionID: target}
}

func NewRoomEvent(kind string, room domain.RoomID) RoomEvent {
	return RoomEvent{Type: kind, RoomID: room}
}

func NewRoomUsers(room domain.RoomID, peers []Peer, participants []domain.UserID) RoomUsersEvent {
	if peers == nil {
		peers = []Peer{}
	}
	if participants == nil {
		participants = []domain.UserID{}
	}
	return RoomUsersEvent{Type: EventRoomUsers, RoomID: room, Peers: peers, Participants: participants}
}

func NewError(err error) ErrorEvent {
	return ErrorEvent{Type: EventError, Kind: ErrorKind(err), Message: err.Error()}
}

// Encode marshals an event into a Frame.
func Encode(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
