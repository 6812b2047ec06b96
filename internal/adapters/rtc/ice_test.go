package rtc

import (
	"testing"

	"github.com/dkeye/Meet/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfigDefaults(t *testing.T) {
	cfg, err := FromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultWebRTCConfig(), cfg)
}

func TestFromConfigValidates(t *testing.T) {
	cfg, err := FromConfig([]config.ICEServer{
		{URLs: []string{"stun:stun.example.com:3478"}},
		{URLs: []string{"turn:turn.example.com:3478?transport=udp"}, Username: "u", Credential: "p"},
	})
	require.NoError(t, err)
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, "u", cfg.ICEServers[1].Username)

	_, err = FromConfig([]config.ICEServer{{URLs: []string{"http://nope"}}})
	assert.Error(t, err)

	_, err = FromConfig([]config.ICEServer{{URLs: []string{"turn:turn.example.com"}}})
	assert.Error(t, err, "turn needs credentials")

	_, err = FromConfig([]config.ICEServer{{}})
	assert.Error(t, err)
}
