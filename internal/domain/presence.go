package domain

// ConnectionID identifies one live duplex connection. It is issued by the
// gateway and never reused.
type ConnectionID string

// PresenceEntry is the live fact that a connection currently occupies a room.
type PresenceEntry struct {
	ConnectionID ConnectionID `json:"connectionId"`
	RoomID       RoomID       `json:"roomId"`
	UserID       UserID       `json:"userId"`
	DisplayName  string       `json:"displayName"`
}
