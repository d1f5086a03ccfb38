package platform

import (
	"sync"
	"sync/atomic"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/rs/zerolog"
)

// ProtectionUnit stands in for the XMPU/XPPU interrupt block.
type ProtectionUnit struct {
	enabled atomic.Bool
	log     zerolog.Logger

	mu   sync.Mutex
	irqs []fault.ID
}

var _ dispatch.ProtectionUnit = (*ProtectionUnit)(nil)

func NewProtectionUnit(logger zerolog.Logger) *ProtectionUnit {
	return &ProtectionUnit{log: logger.With().Str("component", "xpu").Logger()}
}

func (p *ProtectionUnit) EnableInterrupts() {
	p.enabled.Store(true)
	p.log.Debug().Msg("interrupts enabled")
}

func (p *ProtectionUnit) Enabled() bool {
	return p.enabled.Load()
}

func (p *ProtectionUnit) HandleInterrupt(id fault.ID) {
	if !p.enabled.Load() {
		p.log.Warn().Stringer("fault", id).Msg("interrupt while disabled")
		return
	}
	p.mu.Lock()
	p.irqs = append(p.irqs, id)
	p.mu.Unlock()
	p.log.Error().Stringer("fault", id).Msg("protection violation")
}

// Interrupts returns a copy of the handled interrupt log.
func (p *ProtectionUnit) Interrupts() []fault.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]fault.ID, len(p.irqs))
	copy(out, p.irqs)
	return out
}
