package dispatch

import "github.com/danmuck/emctl/internal/fault"

// Config selects between the default action policies.
type Config struct {
	// WatchdogDirectReset binds the LPD watchdog error to a subsystem reset
	// instead of the graceful custom handler.
	WatchdogDirectReset bool
	// SafetyECC binds OCM and DDR ECC errors to a subsystem reset.
	SafetyECC bool
	// Overrides are applied after the defaults, in order.
	Overrides []Override
}

// Override replaces the default action for one id. Action uses the
// action.ParseAction syntax.
type Override struct {
	ID     fault.ID
	Action string
}

func DefaultConfig() Config {
	return Config{}
}
