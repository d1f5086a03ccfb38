package platform

import (
	"sync"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/module"
	"github.com/rs/zerolog"
)

// Raiser delivers core events.
type Raiser interface {
	Raise(ev module.EventID) int
}

// ErrorStatus models the two error status registers. Bits latch on Inject
// and clear as Pending reads them.
type ErrorStatus struct {
	mu    sync.Mutex
	regs  [3]uint32
	raise Raiser
	log   zerolog.Logger
}

var _ dispatch.FaultSource = (*ErrorStatus)(nil)

func NewErrorStatus(raise Raiser, logger zerolog.Logger) *ErrorStatus {
	return &ErrorStatus{raise: raise, log: logger.With().Str("component", "error_status").Logger()}
}

// Latch sets id's status bit without raising an event.
func (s *ErrorStatus) Latch(id fault.ID) error {
	if !id.Valid() {
		return fault.ErrUnknownID
	}
	s.mu.Lock()
	s.regs[id.Category()] |= 1 << id
	s.mu.Unlock()
	return nil
}

// Inject latches id and raises the event for its category.
func (s *ErrorStatus) Inject(id fault.ID) error {
	if err := s.Latch(id); err != nil {
		return err
	}
	ev, _ := module.EventFor(id.Category())
	s.log.Info().Stringer("fault", id).Uint32("event_id", uint32(ev)).Msg("error injected")
	if s.raise != nil {
		s.raise.Raise(ev)
	}
	return nil
}

// Latched reports whether id's bit is set.
func (s *ErrorStatus) Latched(id fault.ID) bool {
	if !id.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[id.Category()]&(1<<id) != 0
}

// Pending returns the ids latched in category c and clears them.
func (s *ErrorStatus) Pending(c fault.Category) fault.Set {
	if !c.Valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := fault.Set(s.regs[c])
	s.regs[c] = 0
	return set
}
