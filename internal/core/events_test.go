package core

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainEntry() domain.PresenceEntry {
	return domain.PresenceEntry{ConnectionID: "c2", RoomID: "r1", UserID: "u2", DisplayName: "Bob"}
}

func TestSignalPayloadIsOpaque(t *testing.T) {
	payload := json.RawMessage(`{"sdp":"v=0\r\n","kind":"offer","extra":[1,2,3]}`)
	f, err := Encode(NewSignal("c1", payload))
	require.NoError(t, err)

	var back SignalEvent
	require.NoError(t, json.Unmarshal(f, &back))
	assert.Equal(t, domain.ConnectionID("c1"), back.From)
	assert.JSONEq(t, string(payload), string(back.Payload))
}

func TestNewErrorCarriesKind(t *testing.T) {
	ev := NewError(ErrForbidden)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, KindForbidden, ev.Kind)
}
