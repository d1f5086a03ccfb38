// Package platform is an in-process model of the host controller.
//
// Ownership boundary:
// - module core (module table, config + event callbacks, event routing)
//
// - error status registers (latched, clear on read)
//
// - reset primitives, recovery subsystem and protection unit stand-ins
//
// It exists so the error manager can be exercised end to end without
// hardware. Reset primitives here return after recording the request.
package platform
