package action

import (
	"errors"
	"fmt"

	"github.com/danmuck/emctl/internal/fault"
)

var (
	ErrUnknownIdentifier = errors.New("action: unknown error identifier")
	ErrMissingHandler    = errors.New("action: custom action requires a handler")
	ErrNilAction         = errors.New("action: nil action")
	ErrUnsupportedAction = errors.New("action: unsupported action type")
	ErrInvalidScope      = errors.New("action: invalid reset scope")
	ErrUnknownAction     = errors.New("action: unknown action")
	ErrUnknownHandler    = errors.New("action: unknown custom handler")
)

// ConfigError reports a rejected registration for one error id.
type ConfigError struct {
	ID  fault.ID
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("register %s: %v", e.ID, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
