package domain

import (
	"slices"
	"time"
)

type RoomID string

// Room is the durable record of a meeting. Participants lists users that
// were admitted, in admission order; it is not the live presence set.
type Room struct {
	ID           RoomID    `json:"roomId"`
	OwnerID      UserID    `json:"ownerId"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	Participants []UserID  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (r *Room) HasPassword() bool { return r.PasswordHash != "" }

func (r *Room) IsOwner(uid UserID) bool { return r.OwnerID == uid }

func (r *Room) HasParticipant(uid UserID) bool {
	return slices.Contains(r.Participants, uid)
}
