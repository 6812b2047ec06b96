package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	roomIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"
	roomIDLength   = 12
	maxIDAttempts  = 5
)

// Directory is the authoritative room registry backed by a RoomStore.
// Lookups through Get treat inactive rooms as absent.
type Directory struct {
	store    core.RoomStore
	hashCost int
}

// NewDirectory builds a Directory. hashCost <= 0 selects bcrypt.DefaultCost.
func NewDirectory(store core.RoomStore, hashCost int) *Directory {
	if store == nil {
		panic("RoomStore cannot be nil for Directory")
	}
	if hashCost <= 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &Directory{store: store, hashCost: hashCost}
}

// Create makes a new active room owned by owner, who becomes its first
// participant. An empty password means the room is open.
func (d *Directory) Create(ctx context.Context, owner domain.UserID, password string) (*domain.Room, error) {
	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), d.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		hash = string(b)
	}

	now := time.Now().UTC()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := newRoomID()
		if err != nil {
			return nil, err
		}
		room := &domain.Room{
			ID:           id,
			OwnerID:      owner,
			PasswordHash: hash,
			IsActive:     true,
			Participants: []domain.UserID{owner},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		err = d.store.CreateRoom(ctx, room)
		if err == nil {
			log.Info().Str("module", "app.directory").Str("room", string(id)).Str("owner", string(owner)).Msg("room created")
			return room, nil
		}
		if !errors.Is(err, core.ErrDuplicate) {
			return nil, storeErr(err)
		}
		log.Warn().Str("module", "app.directory").Str("room", string(id)).Int("attempt", attempt+1).Msg("room id collision, retrying")
	}
	return nil, fmt.Errorf("%w: no unique room id after %d attempts", core.ErrDurableWriteFailed, maxIDAttempts)
}

// Get returns the room only if it exists and is active.
func (d *Directory) Get(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	room, err := d.Inspect(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, core.ErrRoomNotFound
	}
	return room, nil
}

// Inspect returns the room regardless of its active flag.
func (d *Directory) Inspect(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	room, err := d.store.GetRoom(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return room, nil
}

// VerifyPassword reports whether candidate opens the room. Rooms without a
// password accept any candidate.
func (d *Directory) VerifyPassword(ctx context.Context, id domain.RoomID, candidate string) (bool, error) {
	room, err := d.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return checkPassword(room, candidate), nil
}

func (d *Directory) AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error {
	if _, err := d.Get(ctx, id); err != nil {
		return err
	}
	if err := d.store.AddParticipant(ctx, id, user); err != nil {
		return storeErr(err)
	}
	return nil
}

func (d *Directory) RemoveParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) error {
	if _, err := d.Get(ctx, id); err != nil {
		return err
	}
	if err := d.store.RemoveParticipant(ctx, id, user); err != nil {
		return storeErr(err)
	}
	return nil
}

// Deactivate marks the room ended. Ending an ended room is RoomNotFound.
func (d *Directory) Deactivate(ctx context.Context, id domain.RoomID) error {
	if _, err := d.Get(ctx, id); err != nil {
		return err
	}
	if err := d.store.Deactivate(ctx, id); err != nil {
		return storeErr(err)
	}
	log.Info().Str("module", "app.directory").Str("room", string(id)).Msg("room deactivated")
	return nil
}

func checkPassword(room *domain.Room, candidate string) bool {
	if !room.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(candidate)) == nil
}

// storeErr folds store failures into the service taxonomy.
func storeErr(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrRoomNotFound
	}
	return fmt.Errorf("%w: %w", core.ErrDurableWriteFailed, err)
}

func newRoomID() (domain.RoomID, error) {
	b := make([]byte, roomIDLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate room id: %w", err)
	}
	for i := range b {
		b[i] = roomIDAlphabet[int(b[i])%len(roomIDAlphabet)]
	}
	return domain.RoomID(b), nil
}
