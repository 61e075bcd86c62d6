// Package order provides the Order aggregate of the dispatch marketplace and the state
// machine its status follows.
//
// Lifecycle:
//
//	matching ──> accepted ──> onRoute ──> completed
//	    │            │           │
//	    └────────────┴───────────┴──> cancelledByClient | cancelledByDriver |
//	                                  cancelled_by_admin | cancelled | expired
//
// Two corrective edges exist for guards only: accepted -> matching when the accepting
// driver cannot cover fees, and onRoute -> accepted when the trip start fee cannot be
// charged. The second one is bounded by RevertBudget; once exhausted the order moves to
// cancelled instead.
//
// The first entry into onRoute locks the order to its driver (LockedAt, LockedDriverID).
// After that the driver may only change through an admin reassignment.
//
// Every persisted change yields a before/after Snapshot pair. Snapshots are plain values
// and can be handed to concurrent readers.
package order
