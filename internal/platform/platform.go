package platform

import (
	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/rs/zerolog"
)

// Platform bundles the simulated collaborators of the error manager.
type Platform struct {
	Core       *Core
	Status     *ErrorStatus
	Resets     *Resets
	Recovery   *Recovery
	Protection *ProtectionUnit
}

func New(cfg RecoveryConfig, logger zerolog.Logger) *Platform {
	core := NewCore(logger)
	resets := NewResets(logger)
	return &Platform{
		Core:       core,
		Status:     NewErrorStatus(core, logger),
		Resets:     resets,
		Recovery:   NewRecovery(cfg, resets, logger),
		Protection: NewProtectionUnit(logger),
	}
}

// Deps returns dispatcher dependencies backed by this platform.
func (p *Platform) Deps(logger *zerolog.Logger) dispatch.Deps {
	return dispatch.Deps{
		Source:     p.Status,
		Resets:     p.Resets,
		Recovery:   p.Recovery,
		Protection: p.Protection,
		Logger:     logger,
	}
}
