package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/emctl/internal/action"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch outcomes recorded per error event.
const (
	OutcomeDispatched   = "dispatched"
	OutcomeEmpty        = "empty"
	OutcomeUnrecognized = "unrecognized"
)

var (
	registerOnce sync.Once

	dispatchActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "dispatch",
			Name:      "actions_total",
			Help:      "Actions executed per error id.",
		},
		[]string{"fault", "action"},
	)
	dispatchEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Error events received per category and outcome.",
		},
		[]string{"category", "outcome"},
	)
	handlerPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "dispatch",
			Name:      "handler_panics_total",
			Help:      "Custom handlers that panicked and were recovered.",
		},
		[]string{"fault"},
	)
	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "registry",
			Name:      "registrations_total",
			Help:      "Action registrations per error id and result.",
		},
		[]string{"fault", "action", "success"},
	)
	recoveryAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "emctl",
			Subsystem: "recovery",
			Name:      "available",
			Help:      "1 when the secondary recovery subsystem initialized.",
		},
	)
	platformResets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "platform",
			Name:      "resets_total",
			Help:      "Reset primitives invoked per target.",
		},
		[]string{"target"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "emctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests served by the status endpoint.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "emctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			dispatchActions,
			dispatchEvents,
			handlerPanics,
			registrations,
			recoveryAvailable,
			platformResets,
			httpRequests,
			httpDuration,
		)
	})
}

var categories = [...]fault.Category{fault.CategoryUnknown, fault.Class1, fault.Class2}

var outcomes = [...]string{OutcomeDispatched, OutcomeEmpty, OutcomeUnrecognized}

// DispatchMetrics holds counters resolved up front so recording from fault
// context is a plain atomic add.
type DispatchMetrics struct {
	actions [fault.Count][]prometheus.Counter
	panics  [fault.Count]prometheus.Counter
	events  [len(categories)][len(outcomes)]prometheus.Counter
}

func NewDispatchMetrics() *DispatchMetrics {
	RegisterMetrics()
	m := &DispatchMetrics{}
	kinds := action.Kinds()
	for _, id := range fault.IDs() {
		m.actions[id] = make([]prometheus.Counter, len(kinds))
		for _, k := range kinds {
			m.actions[id][k] = dispatchActions.WithLabelValues(id.String(), k.String())
		}
		m.panics[id] = handlerPanics.WithLabelValues(id.String())
	}
	for ci, c := range categories {
		label := c.String()
		if c == fault.CategoryUnknown {
			label = "unknown"
		}
		for oi, o := range outcomes {
			m.events[ci][oi] = dispatchEvents.WithLabelValues(label, o)
		}
	}
	return m
}

func (m *DispatchMetrics) Action(id fault.ID, k action.Kind) {
	if m == nil || !id.Valid() || int(k) >= len(m.actions[id]) {
		return
	}
	m.actions[id][k].Inc()
}

func (m *DispatchMetrics) HandlerPanic(id fault.ID) {
	if m == nil || !id.Valid() {
		return
	}
	m.panics[id].Inc()
}

func (m *DispatchMetrics) Event(c fault.Category, outcome string) {
	if m == nil {
		return
	}
	ci := 0
	if c.Valid() {
		ci = int(c)
	}
	for oi, o := range outcomes {
		if o == outcome {
			m.events[ci][oi].Inc()
			return
		}
	}
}

func RecordRegistration(id fault.ID, k action.Kind, success bool) {
	RegisterMetrics()
	registrations.WithLabelValues(id.String(), k.String(), strconv.FormatBool(success)).Inc()
}

func SetRecoveryAvailable(ok bool) {
	RegisterMetrics()
	if ok {
		recoveryAvailable.Set(1)
		return
	}
	recoveryAvailable.Set(0)
}

func RecordReset(target string) {
	RegisterMetrics()
	platformResets.WithLabelValues(target).Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
