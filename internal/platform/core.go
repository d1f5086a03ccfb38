package platform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/emctl/internal/module"
	"github.com/rs/zerolog"
)

// MaxModules is the size of the core's module table.
const MaxModules = 32

var (
	ErrTooManyModules = errors.New("platform: module table full")
	ErrUnknownModule  = errors.New("platform: unknown module")
	ErrUnknownEvent   = errors.New("platform: unknown event")
	ErrNilHandler     = errors.New("platform: nil handler")
)

type moduleSlot struct {
	cfg    module.ConfigFunc
	event  module.EventFunc
	events map[module.EventID]struct{}
}

// Core is the module framework: it owns the module table and routes events.
type Core struct {
	mu      sync.Mutex
	modules []*moduleSlot
	known   map[module.EventID]struct{}
	log     zerolog.Logger
}

var _ module.Host = (*Core)(nil)

// NewCore creates a core that accepts subscriptions to events, defaulting to
// the two error channels.
func NewCore(logger zerolog.Logger, events ...module.EventID) *Core {
	if len(events) == 0 {
		events = []module.EventID{module.EventError1, module.EventError2}
	}
	known := make(map[module.EventID]struct{}, len(events))
	for _, ev := range events {
		known[ev] = struct{}{}
	}
	return &Core{
		modules: make([]*moduleSlot, 0, MaxModules),
		known:   known,
		log:     logger.With().Str("component", "core").Logger(),
	}
}

func (c *Core) CreateModule() (module.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.modules) >= MaxModules {
		return 0, ErrTooManyModules
	}
	c.modules = append(c.modules, &moduleSlot{events: make(map[module.EventID]struct{})})
	h := module.Handle(len(c.modules) - 1)
	c.log.Debug().Uint8("mod_id", uint8(h)).Msg("module created")
	return h, nil
}

func (c *Core) SetConfigHandler(h module.Handle, fn module.ConfigFunc) error {
	if fn == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, err := c.slot(h)
	if err != nil {
		return err
	}
	slot.cfg = fn
	return nil
}

func (c *Core) SetEventHandler(h module.Handle, fn module.EventFunc) error {
	if fn == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, err := c.slot(h)
	if err != nil {
		return err
	}
	slot.event = fn
	return nil
}

func (c *Core) RegisterEvent(h module.Handle, ev module.EventID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, err := c.slot(h)
	if err != nil {
		return err
	}
	if _, ok := c.known[ev]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEvent, ev)
	}
	slot.events[ev] = struct{}{}
	c.log.Debug().Uint8("mod_id", uint8(h)).Uint32("event_id", uint32(ev)).Msg("event registered")
	return nil
}

// Subscribed reports whether module h is registered for ev.
func (c *Core) Subscribed(h module.Handle, ev module.EventID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, err := c.slot(h)
	if err != nil {
		return false
	}
	_, ok := slot.events[ev]
	return ok
}

// Configure runs every module's config handler in creation order.
func (c *Core) Configure(cfg []byte) {
	c.mu.Lock()
	handlers := make([]module.ConfigFunc, len(c.modules))
	for i, slot := range c.modules {
		handlers[i] = slot.cfg
	}
	c.mu.Unlock()

	for i, fn := range handlers {
		if fn == nil {
			continue
		}
		fn(module.Handle(i), cfg)
	}
}

// Raise delivers ev synchronously to every subscribed module and returns
// how many received it.
func (c *Core) Raise(ev module.EventID) int {
	type target struct {
		h  module.Handle
		fn module.EventFunc
	}
	c.mu.Lock()
	targets := make([]target, 0, len(c.modules))
	for i, slot := range c.modules {
		if slot.event == nil {
			continue
		}
		if _, ok := slot.events[ev]; ok {
			targets = append(targets, target{h: module.Handle(i), fn: slot.event})
		}
	}
	c.mu.Unlock()

	for _, t := range targets {
		t.fn(t.h, ev)
	}
	if len(targets) == 0 {
		c.log.Debug().Uint32("event_id", uint32(ev)).Msg("event has no subscribers")
	}
	return len(targets)
}

func (c *Core) slot(h module.Handle) (*moduleSlot, error) {
	if int(h) >= len(c.modules) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModule, h)
	}
	return c.modules[h], nil
}
