package action

import (
	"fmt"
	"reflect"

	"github.com/danmuck/emctl/internal/fault"
)

// Handler is a custom recovery routine bound to one or more error ids.
type Handler interface {
	Handle(id fault.ID)
}

// HandlerFunc adapts a plain function (closure) to Handler.
type HandlerFunc func(id fault.ID)

func (f HandlerFunc) Handle(id fault.ID) {
	f(id)
}

// Kind is the flat classification of an Action, used for logs and metrics.
type Kind uint8

const (
	KindNone Kind = iota
	KindCustom
	KindSubsystemReset
	KindSystemReset

	kindCount
)

var kindNames = [kindCount]string{
	KindNone:           "none",
	KindCustom:         "custom",
	KindSubsystemReset: "subsystem_reset",
	KindSystemReset:    "system_reset",
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Kinds returns every action kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Scope selects which reset primitive a Reset action drives.
type Scope uint8

const (
	// ScopeSubsystem resets the processing system only.
	ScopeSubsystem Scope = iota + 1
	// ScopeSystem resets the whole platform.
	ScopeSystem
)

// Action is the response bound to an error id. The set of implementations
// is closed: None, Custom and Reset.
type Action interface {
	Kind() Kind
	isAction()
}

// None ignores the error.
type None struct{}

func (None) Kind() Kind { return KindNone }
func (None) isAction()  {}

// Custom invokes Handler with the error id. Name is informational and is
// what config files refer to.
type Custom struct {
	Name    string
	Handler Handler
}

func (Custom) Kind() Kind { return KindCustom }
func (Custom) isAction()  {}

// Reset triggers a scoped hardware reset. It is not expected to return.
type Reset struct {
	Scope Scope
}

func (r Reset) Kind() Kind {
	if r.Scope == ScopeSystem {
		return KindSystemReset
	}
	return KindSubsystemReset
}

func (Reset) isAction() {}

// SubsystemReset is the processing-system-only reset action.
func SubsystemReset() Action { return Reset{Scope: ScopeSubsystem} }

// SystemReset is the full platform reset action.
func SystemReset() Action { return Reset{Scope: ScopeSystem} }

// Entry binds one error id to its action. Entries are immutable once published.
type Entry struct {
	ID     fault.ID
	Action Action
}

// Kind returns the entry's action kind, treating a missing action as none.
func (e Entry) Kind() Kind {
	if e.Action == nil {
		return KindNone
	}
	return e.Action.Kind()
}

func validate(a Action) error {
	switch v := a.(type) {
	case nil:
		return ErrNilAction
	case None:
		return nil
	case Custom:
		if nilHandler(v.Handler) {
			return ErrMissingHandler
		}
		return nil
	case Reset:
		if v.Scope != ScopeSubsystem && v.Scope != ScopeSystem {
			return ErrInvalidScope
		}
		return nil
	default:
		return ErrUnsupportedAction
	}
}

// nilHandler catches typed nils (nil pointer, func, map, chan) behind a
// non-nil interface as well as the nil interface itself.
func nilHandler(h Handler) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
