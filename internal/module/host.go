// Package module wires the error manager into the host module framework.
//
// Ownership boundary:
// - module registration with the host core
//
// - config callback -> dispatch.Initialize
//
// - event callback -> dispatch.OnEvent
package module

import "github.com/danmuck/emctl/internal/fault"

// Handle identifies one module inside the host core.
type Handle uint8

// EventID names a host core event channel.
type EventID uint32

const (
	EventError1 EventID = 1
	EventError2 EventID = 2
)

// ConfigFunc is called once by the host core to configure a module.
type ConfigFunc func(h Handle, cfg []byte)

// EventFunc is called by the host core for every event the module subscribed to.
type EventFunc func(h Handle, ev EventID)

// Host is the module framework that owns the event loop.
type Host interface {
	CreateModule() (Handle, error)
	SetConfigHandler(h Handle, fn ConfigFunc) error
	SetEventHandler(h Handle, fn EventFunc) error
	RegisterEvent(h Handle, ev EventID) error
}

// EventFor returns the event channel that carries category c.
func EventFor(c fault.Category) (EventID, bool) {
	switch c {
	case fault.Class1:
		return EventError1, true
	case fault.Class2:
		return EventError2, true
	default:
		return 0, false
	}
}

// CategoryFor returns the error category carried by ev.
func CategoryFor(ev EventID) (fault.Category, bool) {
	switch ev {
	case EventError1:
		return fault.Class1, true
	case EventError2:
		return fault.Class2, true
	default:
		return fault.CategoryUnknown, false
	}
}
