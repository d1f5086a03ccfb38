package module

import (
	"errors"
	"testing"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/fault"
	"github.com/danmuck/emctl/internal/testutil/testlog"
)

type fakeHost struct {
	createErr error
	cfg       ConfigFunc
	event     EventFunc
	events    []EventID
}

func (h *fakeHost) CreateModule() (Handle, error) {
	if h.createErr != nil {
		return 0, h.createErr
	}
	return 4, nil
}

func (h *fakeHost) SetConfigHandler(_ Handle, fn ConfigFunc) error {
	h.cfg = fn
	return nil
}

func (h *fakeHost) SetEventHandler(_ Handle, fn EventFunc) error {
	h.event = fn
	return nil
}

func (h *fakeHost) RegisterEvent(_ Handle, ev EventID) error {
	h.events = append(h.events, ev)
	return nil
}

type fakeDispatcher struct {
	initErr    error
	cfg        dispatch.Config
	inits      int
	categories []fault.Category
}

func (d *fakeDispatcher) Initialize(sub dispatch.Subscriber, cfg dispatch.Config) error {
	d.inits++
	d.cfg = cfg
	for _, c := range []fault.Category{fault.Class1, fault.Class2} {
		if err := sub.Subscribe(c); err != nil {
			return err
		}
	}
	return d.initErr
}

func (d *fakeDispatcher) OnEvent(c fault.Category) {
	d.categories = append(d.categories, c)
}

func TestInstallWiresCallbacks(t *testing.T) {
	logger := testlog.Start(t)
	host := &fakeHost{}
	d := &fakeDispatcher{}
	cfg := dispatch.Config{SafetyECC: true}

	m, err := Install(host, d, cfg, &logger)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if m.Handle() != 4 {
		t.Fatalf("unexpected handle: %d", m.Handle())
	}
	if host.cfg == nil || host.event == nil {
		t.Fatalf("callbacks not set")
	}
	if d.inits != 0 {
		t.Fatalf("dispatcher initialized before config callback")
	}

	host.cfg(m.Handle(), nil)
	if d.inits != 1 || !d.cfg.SafetyECC {
		t.Fatalf("config callback did not initialize: inits=%d cfg=%+v", d.inits, d.cfg)
	}
	if len(host.events) != 2 || host.events[0] != EventError1 || host.events[1] != EventError2 {
		t.Fatalf("unexpected subscriptions: %v", host.events)
	}
	if m.Err() != nil {
		t.Fatalf("unexpected init error: %v", m.Err())
	}
}

func TestEventCallbackRoutesCategories(t *testing.T) {
	logger := testlog.Start(t)
	host := &fakeHost{}
	d := &fakeDispatcher{}
	m, err := Install(host, d, dispatch.DefaultConfig(), &logger)
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	host.event(m.Handle(), EventError2)
	host.event(m.Handle(), EventError1)
	host.event(m.Handle(), EventID(99))

	want := []fault.Category{fault.Class2, fault.Class1}
	if len(d.categories) != len(want) {
		t.Fatalf("unexpected dispatches: %v", d.categories)
	}
	for i := range want {
		if d.categories[i] != want[i] {
			t.Fatalf("dispatch %d: got=%s want=%s", i, d.categories[i], want[i])
		}
	}
}

func TestInitErrorIsRetained(t *testing.T) {
	logger := testlog.Start(t)
	host := &fakeHost{}
	boom := errors.New("boom")
	m, err := Install(host, &fakeDispatcher{initErr: boom}, dispatch.DefaultConfig(), &logger)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	host.cfg(m.Handle(), []byte("cfg"))
	if !errors.Is(m.Err(), boom) {
		t.Fatalf("expected init error retained, got %v", m.Err())
	}
}

func TestInstallFailures(t *testing.T) {
	logger := testlog.Start(t)
	if _, err := Install(nil, &fakeDispatcher{}, dispatch.DefaultConfig(), &logger); !errors.Is(err, dispatch.ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
	full := errors.New("table full")
	if _, err := Install(&fakeHost{createErr: full}, &fakeDispatcher{}, dispatch.DefaultConfig(), &logger); !errors.Is(err, full) {
		t.Fatalf("expected create error, got %v", err)
	}
}

func TestSubscribeUnknownCategory(t *testing.T) {
	logger := testlog.Start(t)
	m, err := Install(&fakeHost{}, &fakeDispatcher{}, dispatch.DefaultConfig(), &logger)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := m.Subscribe(fault.CategoryUnknown); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestEventCategoryMapping(t *testing.T) {
	for _, c := range []fault.Category{fault.Class1, fault.Class2} {
		ev, ok := EventFor(c)
		if !ok {
			t.Fatalf("no event for %s", c)
		}
		back, ok := CategoryFor(ev)
		if !ok || back != c {
			t.Fatalf("round trip %s -> %d -> %s", c, ev, back)
		}
	}
	if _, ok := CategoryFor(0); ok {
		t.Fatalf("expected event 0 unmapped")
	}
}

func TestCallbacksForForeignHandleAreDropped(t *testing.T) {
	logger := testlog.Start(t)
	host := &fakeHost{}
	d := &fakeDispatcher{}
	m, err := Install(host, d, dispatch.DefaultConfig(), &logger)
	if err != nil {
		t.Fatalf("install: %v", err)
	}

	other := m.Handle() + 1
	host.cfg(other, nil)
	host.event(other, EventError1)
	if d.inits != 0 || len(d.categories) != 0 {
		t.Fatalf("foreign callbacks reached dispatcher: inits=%d categories=%v", d.inits, d.categories)
	}

	host.cfg(m.Handle(), nil)
	host.event(m.Handle(), EventError2)
	if d.inits != 1 || len(d.categories) != 1 || d.categories[0] != fault.Class2 {
		t.Fatalf("owned callbacks not delivered: inits=%d categories=%v", d.inits, d.categories)
	}
}
