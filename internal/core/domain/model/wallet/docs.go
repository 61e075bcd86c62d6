// Package wallet provides the Wallet aggregate: a driver's or the platform's balance in
// MRU together with its running totals and the amount reserved for pending payouts.
//
// A wallet never changes on its own. Every balance mutation is paired with exactly one
// ledger entry by the wallet accessor, so that the balance always equals the sum of the
// wallet's ledger amounts.
package wallet
