// Package action owns the error action registry.
//
// Ownership boundary:
// - action kinds and custom handler capability
//
// - per-identifier action table (fixed capacity, direct indexed)
//
// Lookup runs in fault context: it never fails, never blocks and never
// allocates. Register publishes a fresh immutable Entry per call so a
// concurrent Lookup observes either the old or the new entry, never a mix.
package action
