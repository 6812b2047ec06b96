package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("  alice ", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice", u.DisplayName)
	assert.Len(t, string(u.ID), MaxUserIDLen)

	id := u.Identity()
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "alice", id.DisplayName)
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser("   ", "x")
	assert.ErrorIs(t, err, ErrUsernameEmpty)

	_, err = NewUser(strings.Repeat("a", MaxUsernameLen+1), "")
	assert.ErrorIs(t, err, ErrUsernameTooLong)

	_, err = NewUser("bob", strings.Repeat("b", MaxDisplayNameLen+1))
	assert.ErrorIs(t, err, ErrDisplayNameTooLong)
}

func TestRoomMembership(t *testing.T) {
	r := &Room{OwnerID: "o", Participants: []UserID{"o", "a"}}
	assert.True(t, r.IsOwner("o"))
	assert.False(t, r.IsOwner("a"))
	assert.True(t, r.HasParticipant("a"))
	assert.False(t, r.HasParticipant("b"))
	assert.False(t, r.HasPassword())
}
