package observability

import (
	"testing"

	"github.com/danmuck/emctl/internal/action"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordRegistration(fault.XMPU, action.KindCustom, true)
	RecordReset("ps_only")
	SetRecoveryAvailable(true)
	if got := testutil.ToFloat64(recoveryAvailable); got != 1 {
		t.Fatalf("unexpected recovery gauge: %v", got)
	}
	SetRecoveryAvailable(false)
	if got := testutil.ToFloat64(recoveryAvailable); got != 0 {
		t.Fatalf("unexpected recovery gauge: %v", got)
	}
}

func TestDispatchMetricsCounters(t *testing.T) {
	testlog.Start(t)
	m := NewDispatchMetrics()

	counter := dispatchActions.WithLabelValues("pll_lock", "custom")
	before := testutil.ToFloat64(counter)
	m.Action(fault.PLLLock, action.KindCustom)
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("unexpected action count: %v", got)
	}

	events := dispatchEvents.WithLabelValues("unknown", OutcomeUnrecognized)
	before = testutil.ToFloat64(events)
	m.Event(fault.Category(42), OutcomeUnrecognized)
	if got := testutil.ToFloat64(events); got != before+1 {
		t.Fatalf("unexpected event count: %v", got)
	}

	m.Action(fault.Count, action.KindNone)
	m.HandlerPanic(fault.Count)
	m.Event(fault.Class1, "bogus")
	var nilMetrics *DispatchMetrics
	nilMetrics.Action(fault.XMPU, action.KindNone)
	nilMetrics.Event(fault.Class2, OutcomeEmpty)
	nilMetrics.HandlerPanic(fault.XMPU)
}

func TestDispatchMetricsDoNotAllocate(t *testing.T) {
	m := NewDispatchMetrics()
	allocs := testing.AllocsPerRun(100, func() {
		m.Action(fault.LockstepCPU, action.KindCustom)
		m.Event(fault.Class1, OutcomeDispatched)
	})
	if allocs != 0 {
		t.Fatalf("recording allocated: %v", allocs)
	}
}
