package orch

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/VoipWeb/internal/core"
	"github.com/dkeye/VoipWeb/internal/domain"
)

func (o *Orchestrator) callUser(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.CallUserRequest](raw)
	if err != nil {
		return nil, err
	}
	if req.CalleeID == "" {
		return nil, fmt.Errorf("missing calleeId: %w", domain.ErrMalformedEvent)
	}
	kind, err := domain.ParseMediaKind(req.MediaKind)
	if err != nil {
		return nil, err
	}
	if (kind == domain.Audio && !o.features.AudioCalls) || (kind == domain.Video && !o.features.VideoCalls) {
		return nil, fmt.Errorf("%s calls: %w", kind, domain.ErrFeatureDisabled)
	}
	return o.Calls.CallUser(id, req.CalleeID, kind)
}

func (o *Orchestrator) callAnswer(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.CallAnswerRequest](raw)
	if err != nil {
		return nil, err
	}
	if req.CallID == "" || req.Accept == nil {
		return nil, fmt.Errorf("callId and accept are required: %w", domain.ErrMalformedEvent)
	}
	return o.Calls.Answer(req.CallID, id, *req.Accept)
}

func (o *Orchestrator) hangup(id domain.ConnID, raw json.RawMessage) ([]core.Outbound, error) {
	req, err := decode[core.HangupRequest](raw)
	if err != nil {
		return nil, err
	}
	if req.CallID == "" {
		return nil, fmt.Errorf("missing callId: %w", domain.ErrMalformedEvent)
	}
	return o.Calls.Hangup(req.CallID, id)
}
