// Package ledger provides the append-only record of wallet movements.
//
// An Entry is immutable once built: it carries the signed amount, the balance of the
// wallet before and after, and a deterministic idempotency Key. At most one entry exists
// per (wallet, key); applying the same financial effect twice is detected through that
// pair rather than through delivery deduplication.
//
// Replay recomputes a wallet balance from its entries in creation order and reports every
// entry whose recorded balances disagree with the replay.
package ledger
