// Package events delivers committed order changes to the change handlers.
//
// An OrderChange is an immutable before/after pair. Delivery is at-least-once and
// unordered across orders, so every handler must be safe to run again on the same
// change. The Dispatcher runs all registered handlers independently and concurrently
// and reports each failure with its handler name.
package events
