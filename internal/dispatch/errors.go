package dispatch

import "errors"

var (
	ErrMissingDependency    = errors.New("dispatch: missing dependency")
	ErrSubscribe            = errors.New("dispatch: subscribe failed")
	ErrOverride             = errors.New("dispatch: override rejected")
	ErrRecoveryUnavailable  = errors.New("dispatch: recovery subsystem unavailable")
	ErrUnrecognizedCategory = errors.New("dispatch: unrecognized error category")
)
