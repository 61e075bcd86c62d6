// Package payout models admin-initiated withdrawals from a driver wallet.
//
// A request reserves its amount in the wallet's pendingPayout until it is resolved.
// Completed and rejected are terminal and mutually exclusive; each resolution is
// idempotent against its own terminal status and fails against the other.
package payout
