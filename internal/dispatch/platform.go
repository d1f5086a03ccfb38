package dispatch

import "github.com/danmuck/emctl/internal/fault"

// FaultSource reports the ids latched in a category's status register.
// Reading clears what it returns, so each latched id is reported once.
type FaultSource interface {
	Pending(c fault.Category) fault.Set
}

// Resetter drives the platform reset sequencers. ResetPSOnly and ResetSystem
// are not expected to return on real hardware.
type Resetter interface {
	ResetRPU()
	ResetPSOnly()
	ResetSystem()
}

// Recovery is the secondary recovery subsystem used for FPD watchdog errors.
type Recovery interface {
	Init() error
	Handle(id fault.ID)
}

// ProtectionUnit is the memory/peripheral protection unit interrupt block.
type ProtectionUnit interface {
	HandleInterrupt(id fault.ID)
	EnableInterrupts()
}

// Subscriber subscribes the dispatcher to one error event channel.
type Subscriber interface {
	Subscribe(c fault.Category) error
}
