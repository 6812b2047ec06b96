// Package rtc builds the WebRTC configuration handed to browsers. Media
// never passes through this server; peers connect to each other directly.
package rtc

import (
	"fmt"

	"github.com/dkeye/Meet/internal/config"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// FromConfig validates the configured STUN/TURN servers. An empty list
// yields DefaultWebRTCConfig.
func FromConfig(servers []config.ICEServer) (webrtc.Configuration, error) {
	if len(servers) == 0 {
		return DefaultWebRTCConfig(), nil
	}
	out := webrtc.Configuration{ICEServers: make([]webrtc.ICEServer, 0, len(servers))}
	for i, s := range servers {
		if len(s.URLs) == 0 {
			return webrtc.Configuration{}, fmt.Errorf("ice_servers[%d]: no urls", i)
		}
		turn := false
		for _, raw := range s.URLs {
			u, err := stun.ParseURI(raw)
			if err != nil {
				return webrtc.Configuration{}, fmt.Errorf("ice_servers[%d]: %q: %w", i, raw, err)
			}
			if u.Scheme == stun.SchemeTypeTURN || u.Scheme == stun.SchemeTypeTURNS {
				turn = true
			}
		}
		if turn && (s.Username == "" || s.Credential == "") {
			return webrtc.Configuration{}, fmt.Errorf("ice_servers[%d]: turn server needs username and credential", i)
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out.ICEServers = append(out.ICEServers, srv)
	}
	log.Info().Str("module", "rtc").Int("ice_servers", len(out.ICEServers)).Msg("ice configuration ready")
	return out, nil
}
