package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

// trace records collaborator calls in order across all fakes.
type trace struct {
	calls []string
}

func (t *trace) add(format string, args ...any) {
	t.calls = append(t.calls, fmt.Sprintf(format, args...))
}

type fakeSource struct {
	pending map[fault.Category]fault.Set
	queries int
}

func (s *fakeSource) Pending(c fault.Category) fault.Set {
	s.queries++
	set := s.pending[c]
	delete(s.pending, c)
	return set
}

func (s *fakeSource) latch(ids ...fault.ID) {
	if s.pending == nil {
		s.pending = make(map[fault.Category]fault.Set)
	}
	for _, id := range ids {
		c := id.Category()
		s.pending[c] = s.pending[c].Add(id)
	}
}

// staticSource reports the same set on every read.
type staticSource fault.Set

func (s staticSource) Pending(fault.Category) fault.Set { return fault.Set(s) }

type fakeResets struct {
	tr     *trace
	rpu    int
	psOnly int
	system int
}

func (r *fakeResets) ResetRPU()    { r.rpu++; r.tr.add("reset:rpu") }
func (r *fakeResets) ResetPSOnly() { r.psOnly++; r.tr.add("reset:ps_only") }
func (r *fakeResets) ResetSystem() { r.system++; r.tr.add("reset:system") }

func (r *fakeResets) total() int { return r.rpu + r.psOnly + r.system }

type fakeRecovery struct {
	tr      *trace
	initErr error
	handled []fault.ID
}

func (r *fakeRecovery) Init() error { return r.initErr }

func (r *fakeRecovery) Handle(id fault.ID) {
	r.handled = append(r.handled, id)
	r.tr.add("recovery:%s", id)
}

type fakeProtection struct {
	tr      *trace
	enabled bool
	irqs    []fault.ID
}

func (p *fakeProtection) HandleInterrupt(id fault.ID) {
	p.irqs = append(p.irqs, id)
	p.tr.add("xpu:%s", id)
}

func (p *fakeProtection) EnableInterrupts() { p.enabled = true }

type fakeSubscriber struct {
	subscribed []fault.Category
	failOn     fault.Category
}

var errSubscribeRefused = errors.New("refused")

func (s *fakeSubscriber) Subscribe(c fault.Category) error {
	if c == s.failOn {
		return errSubscribeRefused
	}
	s.subscribed = append(s.subscribed, c)
	return nil
}

type harness struct {
	tr         *trace
	source     *fakeSource
	resets     *fakeResets
	recovery   *fakeRecovery
	protection *fakeProtection
	d          *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := testlog.Start(t)
	tr := &trace{}
	h := &harness{
		tr:         tr,
		source:     &fakeSource{},
		resets:     &fakeResets{tr: tr},
		recovery:   &fakeRecovery{tr: tr},
		protection: &fakeProtection{tr: tr},
	}
	d, err := New(Deps{
		Source:     h.source,
		Resets:     h.resets,
		Recovery:   h.recovery,
		Protection: h.protection,
		Logger:     &logger,
	})
	require.NoError(t, err)
	h.d = d
	return h
}
