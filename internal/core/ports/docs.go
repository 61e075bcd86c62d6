// Package ports defines the contracts between the dispatch core and its infrastructure:
// repositories bound to a unit of work, and the outbound collaborators used by the
// change handlers (push dispatch, operator alerts, change publishing, delivery memo).
package ports
