// Package reactions holds the order change handlers.
//
// Each handler looks at one transition. It re-reads the order under a row lock in its own
// transaction and does nothing unless the current state still matches that transition, so
// redelivery and concurrent delivery are harmless. Money-protecting guards are fail-closed;
// notifications are fail-open.
package reactions
