// Package fault owns the error identity model.
//
// Ownership boundary:
// - error identifiers (closed set, dense)
//
// - error categories (status register selection)
//
// Identifiers are assigned at build time and never change for the life of
// the process. A category is only used to pick which status register to poll;
// it is never looked up in the action registry.
package fault
