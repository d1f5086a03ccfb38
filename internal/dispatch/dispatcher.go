package dispatch

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/danmuck/emctl/internal/action"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/observability"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Deps are the platform collaborators a Dispatcher drives. Recovery may be
// nil, in which case the FPD watchdog stays unbound.
type Deps struct {
	Source     FaultSource
	Resets     Resetter
	Recovery   Recovery
	Protection ProtectionUnit
	Registry   *action.Registry
	Logger     *zerolog.Logger
	Metrics    *observability.DispatchMetrics
}

// Dispatcher turns error events into registered actions.
type Dispatcher struct {
	registry   *action.Registry
	source     FaultSource
	resets     Resetter
	recovery   Recovery
	protection ProtectionUnit
	log        zerolog.Logger
	metrics    *observability.DispatchMetrics

	recoveryReady atomic.Bool
}

func New(deps Deps) (*Dispatcher, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("%w: fault source", ErrMissingDependency)
	}
	if deps.Resets == nil {
		return nil, fmt.Errorf("%w: resetter", ErrMissingDependency)
	}
	if deps.Protection == nil {
		return nil, fmt.Errorf("%w: protection unit", ErrMissingDependency)
	}

	d := &Dispatcher{
		registry:   deps.Registry,
		source:     deps.Source,
		resets:     deps.Resets,
		recovery:   deps.Recovery,
		protection: deps.Protection,
		log:        log.Logger,
		metrics:    deps.Metrics,
	}
	if d.registry == nil {
		d.registry = action.NewRegistry()
	}
	if deps.Logger != nil {
		d.log = *deps.Logger
	}
	d.log = d.log.With().Str("component", "em").Logger()
	if d.metrics == nil {
		d.metrics = observability.NewDispatchMetrics()
	}
	return d, nil
}

// Registry exposes the action table for status reporting.
func (d *Dispatcher) Registry() *action.Registry {
	return d.registry
}

// RecoveryAvailable reports whether the recovery subsystem initialized.
func (d *Dispatcher) RecoveryAvailable() bool {
	return d.recoveryReady.Load()
}

// Initialize subscribes to both error channels, installs the default action
// policy for cfg, brings up the recovery subsystem and enables protection
// unit interrupts. Rejected registrations do not stop the sequence; they
// are returned together once it completes.
func (d *Dispatcher) Initialize(sub Subscriber, cfg Config) error {
	var merr *multierror.Error

	if sub != nil {
		for _, c := range []fault.Category{fault.Class1, fault.Class2} {
			if err := sub.Subscribe(c); err != nil {
				d.log.Error().Err(err).Stringer("category", c).Msg("subscribe failed")
				merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrSubscribe, c, err))
			}
		}
	}

	d.registry.Initialize()

	merr = d.register(merr, fault.LockstepCPU, action.Custom{
		Name:    HandlerRPULockstep,
		Handler: action.HandlerFunc(d.handleLockstep),
	})
	if cfg.WatchdogDirectReset {
		merr = d.register(merr, fault.LPDWatchdog, action.SubsystemReset())
	} else {
		merr = d.register(merr, fault.LPDWatchdog, action.Custom{
			Name:    HandlerLPDGraceful,
			Handler: action.HandlerFunc(d.handleLPDWatchdog),
		})
	}

	if err := d.initRecovery(); err != nil {
		d.log.Warn().Err(err).Stringer("fault", fault.FPDWatchdog).Msg("recovery init failed, leaving error unbound")
	} else {
		merr = d.register(merr, fault.FPDWatchdog, action.Custom{
			Name:    HandlerFPDRecovery,
			Handler: action.HandlerFunc(d.handleFPDWatchdog),
		})
	}

	merr = d.register(merr, fault.XMPU, action.Custom{
		Name:    HandlerXPUInterrupt,
		Handler: action.HandlerFunc(d.protection.HandleInterrupt),
	})

	if cfg.SafetyECC {
		merr = d.register(merr, fault.OCMECC, action.SubsystemReset())
		merr = d.register(merr, fault.DDRECC, action.SubsystemReset())
	}

	catalog := d.Catalog()
	for _, o := range cfg.Overrides {
		a, err := action.ParseAction(o.Action, catalog)
		if err != nil {
			d.log.Error().Err(err).Stringer("fault", o.ID).Msg("override rejected")
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrOverride, o.ID, err))
			continue
		}
		merr = d.register(merr, o.ID, a)
	}

	d.protection.EnableInterrupts()

	d.log.Info().
		Bool("recovery", d.RecoveryAvailable()).
		Bool("watchdog_direct_reset", cfg.WatchdogDirectReset).
		Bool("safety_ecc", cfg.SafetyECC).
		Int("overrides", len(cfg.Overrides)).
		Msg("error manager initialized")
	return merr.ErrorOrNil()
}

// Register binds a to id outside the default policy.
func (d *Dispatcher) Register(id fault.ID, a action.Action) error {
	err := d.registry.Register(id, a)
	kind := action.KindNone
	if a != nil {
		kind = a.Kind()
	}
	observability.RecordRegistration(id, kind, err == nil)
	if err != nil {
		d.log.Error().Err(err).Stringer("fault", id).Stringer("action", kind).Msg("registration rejected")
		return err
	}
	d.log.Debug().Stringer("fault", id).Stringer("action", kind).Msg("action registered")
	return nil
}

func (d *Dispatcher) register(merr *multierror.Error, id fault.ID, a action.Action) *multierror.Error {
	if err := d.Register(id, a); err != nil {
		return multierror.Append(merr, err)
	}
	return merr
}

func (d *Dispatcher) initRecovery() error {
	d.recoveryReady.Store(false)
	if d.recovery == nil {
		observability.SetRecoveryAvailable(false)
		return ErrRecoveryUnavailable
	}
	if err := d.recovery.Init(); err != nil {
		observability.SetRecoveryAvailable(false)
		return fmt.Errorf("%w: %w", ErrRecoveryUnavailable, err)
	}
	d.recoveryReady.Store(true)
	observability.SetRecoveryAvailable(true)
	return nil
}

// OnEvent processes every id pending in category c.
func (d *Dispatcher) OnEvent(c fault.Category) {
	if !c.Valid() {
		d.metrics.Event(c, observability.OutcomeUnrecognized)
		d.log.Warn().Err(ErrUnrecognizedCategory).Stringer("category", c).Msg("ignoring error event")
		return
	}

	raw := d.source.Pending(c)
	if unknown := raw.Unknown(); !unknown.Empty() {
		d.log.Warn().Uint32("bits", uint32(unknown)).Stringer("category", c).Msg("ignoring unknown error ids")
	}
	pending := raw.Known()
	if pending.Empty() {
		d.metrics.Event(c, observability.OutcomeEmpty)
		return
	}
	d.metrics.Event(c, observability.OutcomeDispatched)

	for id := fault.ID(0); id < fault.Count; id++ {
		if !pending.Has(id) {
			continue
		}
		if d.execute(id) {
			return
		}
	}
}

// execute runs the action bound to id and reports whether it was a reset,
// after which the rest of the batch is abandoned.
func (d *Dispatcher) execute(id fault.ID) bool {
	e := d.registry.Lookup(id)
	kind := e.Kind()
	d.metrics.Action(id, kind)

	switch a := e.Action.(type) {
	case action.Custom:
		d.invoke(id, a)
	case action.Reset:
		d.log.Error().Stringer("fault", id).Stringer("action", kind).Msg("initiating reset")
		if a.Scope == action.ScopeSystem {
			d.resets.ResetSystem()
		} else {
			d.resets.ResetPSOnly()
		}
		return true
	default:
		d.log.Debug().Stringer("fault", id).Msg("no action bound")
	}
	return false
}

func (d *Dispatcher) invoke(id fault.ID, a action.Custom) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.HandlerPanic(id)
			d.log.Error().
				Stringer("fault", id).
				Str("handler", a.Name).
				Err(panicError(r)).
				Msg("custom handler panicked")
		}
	}()
	a.Handler.Handle(id)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.New(fmt.Sprint(r))
}
