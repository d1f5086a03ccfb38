package module

import (
	"errors"
	"fmt"
	"sync"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrUnknownCategory = errors.New("module: no event channel for category")

// Dispatcher is the part of dispatch.Dispatcher the adapter drives.
type Dispatcher interface {
	Initialize(sub dispatch.Subscriber, cfg dispatch.Config) error
	OnEvent(c fault.Category)
}

// EM is the error manager module as seen by the host core.
type EM struct {
	host   Host
	handle Handle
	d      Dispatcher
	cfg    dispatch.Config
	log    zerolog.Logger

	mu      sync.Mutex
	initErr error
}

// Install creates the error manager module on host and sets its callbacks.
// Initialization happens when the host core runs the config callback.
func Install(host Host, d Dispatcher, cfg dispatch.Config, logger *zerolog.Logger) (*EM, error) {
	if host == nil || d == nil {
		return nil, fmt.Errorf("module: install: %w", dispatch.ErrMissingDependency)
	}
	h, err := host.CreateModule()
	if err != nil {
		return nil, fmt.Errorf("module: create: %w", err)
	}

	m := &EM{host: host, handle: h, d: d, cfg: cfg, log: log.Logger}
	if logger != nil {
		m.log = *logger
	}
	m.log = m.log.With().Str("module", "em").Uint8("mod_id", uint8(h)).Logger()

	if err := host.SetConfigHandler(h, m.onConfig); err != nil {
		return nil, fmt.Errorf("module: set config handler: %w", err)
	}
	if err := host.SetEventHandler(h, m.onEvent); err != nil {
		return nil, fmt.Errorf("module: set event handler: %w", err)
	}
	return m, nil
}

func (m *EM) Handle() Handle {
	return m.handle
}

// Err returns the error reported by the last initialization, if any.
func (m *EM) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initErr
}

// Subscribe registers the module for the event channel carrying c.
func (m *EM) Subscribe(c fault.Category) error {
	ev, ok := EventFor(c)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	return m.host.RegisterEvent(m.handle, ev)
}

// owns reports whether a callback was addressed to this module. Callbacks
// for another handle are logged and dropped.
func (m *EM) owns(h Handle, callback string) bool {
	if h == m.handle {
		return true
	}
	m.log.Warn().Uint8("got_mod_id", uint8(h)).Str("callback", callback).Msg("callback for foreign module ignored")
	return false
}

func (m *EM) onConfig(h Handle, cfg []byte) {
	if !m.owns(h, "config") {
		return
	}
	err := m.d.Initialize(m, m.cfg)
	m.mu.Lock()
	m.initErr = err
	m.mu.Unlock()
	if err != nil {
		m.log.Error().Err(err).Msg("initialized with errors")
		return
	}
	m.log.Info().Int("cfg_len", len(cfg)).Msg("initialized")
}

func (m *EM) onEvent(h Handle, ev EventID) {
	if !m.owns(h, "event") {
		return
	}
	c, ok := CategoryFor(ev)
	if !ok {
		m.log.Warn().Uint32("event_id", uint32(ev)).Msg("unhandled event")
		return
	}
	m.d.OnEvent(c)
}
