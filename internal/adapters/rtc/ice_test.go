package rtc

import "testing"

func TestBuildICEServers(t *testing.T) {
	t.Parallel()

	servers, err := BuildICEServers([]ICEServer{
		{URLs: []string{"stun:stun.example.com:3478"}},
		{URLs: []string{"turn:turn.example.com:3478?transport=udp"}, Username: "user", Credential: "pass"},
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if got := servers[0].URLs; len(got) != 1 || got[0] != "stun:stun.example.com:3478" {
		t.Fatalf("unexpected stun urls: %#v", got)
	}
	if servers[1].Username != "user" {
		t.Fatalf("unexpected username: %q", servers[1].Username)
	}
	if cred, ok := servers[1].Credential.(string); !ok || cred != "pass" {
		t.Fatalf("unexpected credential: %#v", servers[1].Credential)
	}
}

func TestBuildICEServers_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string][]ICEServer{
		"no urls":          {{}},
		"bad scheme":       {{URLs: []string{"http://example.com"}}},
		"turn no creds":    {{URLs: []string{"turn:turn.example.com:3478"}}},
		"turns no secrets": {{URLs: []string{"turns:turn.example.com:5349"}, Username: "u"}},
	}
	for name, in := range cases {
		if _, err := BuildICEServers(in); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaultICEServersAreValid(t *testing.T) {
	t.Parallel()

	if _, err := BuildICEServers(DefaultICEServers()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
