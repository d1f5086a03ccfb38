package platform

import (
	"sync/atomic"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/observability"
	"github.com/rs/zerolog"
)

// Reset targets, as reported to hooks and metrics.
const (
	TargetRPU    = "rpu"
	TargetFPD    = "fpd"
	TargetPSOnly = "ps_only"
	TargetSystem = "system"
)

// Resets records reset requests. OnReset, when set, runs after each one.
type Resets struct {
	OnReset func(target string)

	rpu    atomic.Int64
	fpd    atomic.Int64
	psOnly atomic.Int64
	system atomic.Int64
	log    zerolog.Logger
}

var _ dispatch.Resetter = (*Resets)(nil)

func NewResets(logger zerolog.Logger) *Resets {
	return &Resets{log: logger.With().Str("component", "resets").Logger()}
}

func (r *Resets) ResetRPU()    { r.fire(TargetRPU, &r.rpu) }
func (r *Resets) ResetFPD()    { r.fire(TargetFPD, &r.fpd) }
func (r *Resets) ResetPSOnly() { r.fire(TargetPSOnly, &r.psOnly) }
func (r *Resets) ResetSystem() { r.fire(TargetSystem, &r.system) }

// Count returns how many times target was reset.
func (r *Resets) Count(target string) int64 {
	switch target {
	case TargetRPU:
		return r.rpu.Load()
	case TargetFPD:
		return r.fpd.Load()
	case TargetPSOnly:
		return r.psOnly.Load()
	case TargetSystem:
		return r.system.Load()
	default:
		return 0
	}
}

func (r *Resets) fire(target string, n *atomic.Int64) {
	total := n.Add(1)
	observability.RecordReset(target)
	r.log.Warn().Str("target", target).Int64("count", total).Msg("reset requested")
	if r.OnReset != nil {
		r.OnReset(target)
	}
}
