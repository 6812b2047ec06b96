package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/Meet/internal/adapters/store/memstore"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/core/mocks"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func TestDirectoryCreateMakesOwnerFirstParticipant(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memstore.New(), bcrypt.MinCost)

	room, err := dir.Create(ctx, "owner", "")
	require.NoError(t, err)
	assert.Len(t, string(room.ID), roomIDLength)
	assert.True(t, room.IsActive)
	assert.False(t, room.HasPassword())
	assert.Equal(t, []domain.UserID{"owner"}, room.Participants)

	got, err := dir.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("owner"), got.OwnerID)
}

func TestDirectoryPassword(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memstore.New(), bcrypt.MinCost)

	room, err := dir.Create(ctx, "owner", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", room.PasswordHash)

	ok, err := dir.VerifyPassword(ctx, room.ID, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.VerifyPassword(ctx, room.ID, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	open, err := dir.Create(ctx, "owner", "")
	require.NoError(t, err)
	ok, err = dir.VerifyPassword(ctx, open.ID, "anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectoryInactiveRoomIsNotFound(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(memstore.New(), bcrypt.MinCost)

	room, err := dir.Create(ctx, "owner", "")
	require.NoError(t, err)
	require.NoError(t, dir.Deactivate(ctx, room.ID))

	_, err = dir.Get(ctx, room.ID)
	assert.ErrorIs(t, err, core.ErrRoomNotFound)
	assert.ErrorIs(t, dir.AddParticipant(ctx, room.ID, "u"), core.ErrRoomNotFound)
	assert.ErrorIs(t, dir.RemoveParticipant(ctx, room.ID, "u"), core.ErrRoomNotFound)
	assert.ErrorIs(t, dir.Deactivate(ctx, room.ID), core.ErrRoomNotFound)
	_, err = dir.VerifyPassword(ctx, room.ID, "")
	assert.ErrorIs(t, err, core.ErrRoomNotFound)

	inspected, err := dir.Inspect(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, inspected.IsActive)
}

func TestDirectoryRetriesOnIDCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRoomStore(ctrl)
	gomock.InOrder(
		store.EXPECT().CreateRoom(gomock.Any(), gomock.Any()).Return(core.ErrDuplicate),
		store.EXPECT().CreateRoom(gomock.Any(), gomock.Any()).Return(nil),
	)

	room, err := NewDirectory(store, bcrypt.MinCost).Create(context.Background(), "owner", "")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
}

func TestDirectoryStoreFailureIsDurableWriteFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRoomStore(ctrl)
	store.EXPECT().GetRoom(gomock.Any(), domain.RoomID("r")).
		Return(&domain.Room{ID: "r", OwnerID: "o", IsActive: true}, nil)
	store.EXPECT().AddParticipant(gomock.Any(), domain.RoomID("r"), domain.UserID("u")).
		Return(errors.New("connection refused"))

	err := NewDirectory(store, bcrypt.MinCost).AddParticipant(context.Background(), "r", "u")
	assert.ErrorIs(t, err, core.ErrDurableWriteFailed)
	assert.Equal(t, core.KindDurableWriteFailed, core.ErrorKind(err))
}
