package platform

import (
	"errors"
	"sync"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/rs/zerolog"
)

var ErrWatchdogAbsent = errors.New("platform: FPD watchdog not present")

// RecoveryConfig shapes the APU restart policy.
type RecoveryConfig struct {
	WatchdogPresent bool
	MaxRestarts     int
}

func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{WatchdogPresent: true, MaxRestarts: 3}
}

// Recovery restarts the FPD on watchdog expiry and escalates to a system
// reset once MaxRestarts consecutive restarts have been spent.
type Recovery struct {
	cfg    RecoveryConfig
	resets *Resets
	log    zerolog.Logger

	mu       sync.Mutex
	ready    bool
	restarts int
}

var _ dispatch.Recovery = (*Recovery)(nil)

func NewRecovery(cfg RecoveryConfig, resets *Resets, logger zerolog.Logger) *Recovery {
	return &Recovery{cfg: cfg, resets: resets, log: logger.With().Str("component", "recovery").Logger()}
}

func (r *Recovery) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cfg.WatchdogPresent {
		r.ready = false
		return ErrWatchdogAbsent
	}
	r.ready = true
	r.restarts = 0
	r.log.Info().Int("max_restarts", r.cfg.MaxRestarts).Msg("recovery ready")
	return nil
}

func (r *Recovery) Handle(id fault.ID) {
	r.mu.Lock()
	if !r.ready {
		r.mu.Unlock()
		r.log.Warn().Stringer("fault", id).Msg("recovery not initialized")
		return
	}
	r.restarts++
	n := r.restarts
	r.mu.Unlock()

	if n <= r.cfg.MaxRestarts {
		r.log.Warn().Stringer("fault", id).Int("restart", n).Msg("restarting FPD")
		r.resets.ResetFPD()
		return
	}
	r.log.Error().Stringer("fault", id).Int("restarts", n-1).Msg("restart budget spent, escalating to system reset")
	r.resets.ResetSystem()
}

// Heartbeat marks the APU healthy again and refills the restart budget.
func (r *Recovery) Heartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restarts = 0
}

func (r *Recovery) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}
