package action

import (
	"sync/atomic"

	"github.com/danmuck/emctl/internal/fault"
)

// Registry maps every known error id to its action. The zero value is usable
// and reports None for every id.
type Registry struct {
	entries [fault.Count]atomic.Pointer[Entry]
}

// NewRegistry creates an initialized registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Initialize()
	return r
}

// Initialize resets every entry to None.
func (r *Registry) Initialize() {
	for id := fault.ID(0); id < fault.Count; id++ {
		r.entries[id].Store(&Entry{ID: id, Action: None{}})
	}
}

// Register binds a to id, replacing any previous binding. A rejected
// registration leaves the previous binding in place.
func (r *Registry) Register(id fault.ID, a Action) error {
	if !id.Valid() {
		return &ConfigError{ID: id, Err: ErrUnknownIdentifier}
	}
	if err := validate(a); err != nil {
		return &ConfigError{ID: id, Err: err}
	}
	r.entries[id].Store(&Entry{ID: id, Action: a})
	return nil
}

// Lookup returns the entry for id, or a None entry when nothing is bound.
func (r *Registry) Lookup(id fault.ID) Entry {
	if !id.Valid() {
		return Entry{ID: id, Action: None{}}
	}
	e := r.entries[id].Load()
	if e == nil {
		return Entry{ID: id, Action: None{}}
	}
	return *e
}

// Entries returns a snapshot of every entry in ascending id order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, fault.Count)
	for id := fault.ID(0); id < fault.Count; id++ {
		out = append(out, r.Lookup(id))
	}
	return out
}
