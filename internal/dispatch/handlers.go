package dispatch

import (
	"github.com/danmuck/emctl/internal/action"
	"github.com/danmuck/emctl/internal/fault"
)

// Names of the built-in custom handlers, as referenced from config overrides.
const (
	HandlerRPULockstep  = "rpu_lockstep_reset"
	HandlerLPDGraceful  = "lpd_graceful_reset"
	HandlerFPDRecovery  = "fpd_recovery"
	HandlerXPUInterrupt = "xpu_interrupt"
)

// Catalog returns the built-in custom handlers. fpd_recovery is only offered
// once the recovery subsystem is up.
func (d *Dispatcher) Catalog() action.Catalog {
	c := action.Catalog{
		HandlerRPULockstep:  action.HandlerFunc(d.handleLockstep),
		HandlerLPDGraceful:  action.HandlerFunc(d.handleLPDWatchdog),
		HandlerXPUInterrupt: action.HandlerFunc(d.protection.HandleInterrupt),
	}
	if d.RecoveryAvailable() {
		c[HandlerFPDRecovery] = action.HandlerFunc(d.handleFPDWatchdog)
	}
	return c
}

// Resets the RPU cluster after a lock-step mismatch.
func (d *Dispatcher) handleLockstep(id fault.ID) {
	d.log.Error().Stringer("fault", id).Uint8("error_id", uint8(id)).Msg("RPU lock-step error, initiating RPU reset")
	d.resets.ResetRPU()
}

// Resets the processing system gracefully, terminating PS <-> PL
// transactions before the reset is asserted.
func (d *Dispatcher) handleLPDWatchdog(id fault.ID) {
	d.log.Error().Stringer("fault", id).Uint8("error_id", uint8(id)).Msg("LPD watchdog error, initiating PS only reset")
	d.resets.ResetPSOnly()
}

func (d *Dispatcher) handleFPDWatchdog(id fault.ID) {
	d.log.Error().Stringer("fault", id).Uint8("error_id", uint8(id)).Msg("FPD watchdog error, handing off to recovery")
	d.recovery.Handle(id)
}
