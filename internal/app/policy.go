package app

import "github.com/dkeye/Meet/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	CloseConnection
)

// Policy decides what happens to an endpoint whose send buffer is full.
type Policy interface {
	OnBackPressure(ep core.Endpoint) BackpressureAction
}

// SimplePolicy closes slow connections; the gateway's disconnect path then
// removes their presence.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.Endpoint) BackpressureAction {
	return CloseConnection
}

// LenientPolicy drops the frame and keeps the connection.
type LenientPolicy struct{}

func (LenientPolicy) OnBackPressure(core.Endpoint) BackpressureAction {
	return DropFrame
}

// PolicyByName maps a config value to a policy. Unknown names get SimplePolicy.
func PolicyByName(name string) Policy {
	switch name {
	case "drop":
		return LenientPolicy{}
	default:
		return SimplePolicy{}
	}
}
