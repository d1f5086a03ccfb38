// Package dispatch owns error event processing.
//
// Ownership boundary:
// - error category -> pending id resolution
//
// - default action policy
//
// - action execution (none, custom, reset)
//
// Lifecycle order:
// - New -> Initialize -> OnEvent*
//
// OnEvent runs to completion in the caller's context. It never blocks and
// never reports an error upward; anything it cannot handle degrades to a
// logged no-op. Pending ids are processed in ascending order and a reset
// action ends the batch.
package dispatch
