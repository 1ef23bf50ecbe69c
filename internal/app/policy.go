package app

import (
	"strings"

	"github.com/dkeye/VoipWeb/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(id domain.ConnID, event string) BackpressureAction
}

// SimplePolicy applies the same action to every slow consumer.
type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return p.Action
}

// ParsePolicy understands "drop" and "kick"; anything else drops.
func ParsePolicy(name string) Policy {
	if strings.EqualFold(strings.TrimSpace(name), "kick") {
		return SimplePolicy{Action: KickMember}
	}
	return SimplePolicy{Action: DropFrame}
}
