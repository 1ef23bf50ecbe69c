package rtc

import (
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ICEServer is one configured STUN or TURN entry.
type ICEServer struct {
	URLs       []string `mapstructure:"urls" yaml:"urls" json:"urls"`
	Username   string   `mapstructure:"username" yaml:"username,omitempty" json:"username,omitempty"`
	Credential string   `mapstructure:"credential" yaml:"credential,omitempty" json:"credential,omitempty"`
}

func DefaultICEServers() []ICEServer {
	return []ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

// BuildICEServers validates the configured servers and converts them into
// the form browsers receive through RTCPeerConnection. TURN entries need
// credentials.
func BuildICEServers(in []ICEServer) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(in))
	for i, s := range in {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("ice server %d: no urls", i)
		}
		for _, raw := range s.URLs {
			u, err := stun.ParseURI(raw)
			if err != nil {
				return nil, fmt.Errorf("ice server %d: %q: %w", i, raw, err)
			}
			if (u.Scheme == stun.SchemeTypeTURN || u.Scheme == stun.SchemeTypeTURNS) &&
				(s.Username == "" || s.Credential == "") {
				return nil, fmt.Errorf("ice server %d: %q needs username and credential", i, raw)
			}
		}
		srv := webrtc.ICEServer{
			URLs:     append([]string(nil), s.URLs...),
			Username: s.Username,
		}
		if s.Credential != "" {
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	log.Debug().Str("module", "webrtc").Int("servers", len(out)).Msg("ice servers ready")
	return out, nil
}
