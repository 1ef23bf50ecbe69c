package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/VoipWeb/internal/app"
	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
)

func (o *Orchestrator) textMessage(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	if !o.features.TextChat {
		return nil, fmt.Errorf("text chat: %w", domain.ErrFeatureDisabled)
	}
	req, err := decode[core.TextMessageRequest](raw)
	if err != nil {
		return nil, err
	}
	return o.Signals.Relay(id, "", app.TextMessage, []byte(req.Body))
}

func (o *Orchestrator) webrtcSignal(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.WebRTCSignalRequest](raw)
	if err != nil {
		return nil, err
	}
	return o.Signals.Relay(id, req.ToID, app.WebRTCSignal, req.Payload)
}
