package app

import (
	"fmt"

	"github.com/dkeye/Support/internal/core"
)

type BackpressureAction int

const (
	DropEvent BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose send queue is full.
type Policy interface {
	OnBackPressure(conn *core.Connection) BackpressureAction
}

// DropPolicy skips the event for the slow recipient only.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(*core.Connection) BackpressureAction { return DropEvent }

// KickPolicy closes slow recipients; their reader then runs the disconnect path.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(*core.Connection) BackpressureAction { return KickMember }

// PolicyByName maps the config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
