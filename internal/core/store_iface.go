package core

import (
	"context"
	"errors"

	"github.com/dkeye/Meet/internal/domain"
)

// Store-level sentinels. Services translate them into the taxonomy in errors.go.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// RoomStore persists room records and their durable participant lists.
// AddParticipant is idempotent; RemoveParticipant of an absent user is a no-op.
// Every method returns ErrNotFound when the room does not exist.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *domain.Room) error
	GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error
	RemoveParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error
	Deactivate(ctx context.Context, id domain.RoomID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

// IdentityResolver turns an opaque bearer credential into an identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (domain.Identity, error)
}
