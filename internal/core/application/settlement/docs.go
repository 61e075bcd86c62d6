// Package settlement owns every wallet mutation.
//
// WalletAccessor is the only sanctioned way to change a wallet balance: it locks the
// wallet row, checks the idempotency key, and writes the new balance together with a
// matching ledger entry through the caller's unit of work. FeeEngine derives the
// two-phase commission from an order and applies it through the accessor.
package settlement
