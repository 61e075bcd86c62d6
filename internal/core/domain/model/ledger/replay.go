package ledger

import (
	"sort"

	"dispatch/internal/core/domain/model/wallet"
)

// Discrepancy describes one entry whose recorded balances disagree with the replay.
type Discrepancy struct {
	EntryID        string `json:"entryId"`
	Seq            int64  `json:"seq"`
	Key            Key    `json:"idempotencyKey"`
	ExpectedBefore int64  `json:"expectedBefore"`
	RecordedBefore int64  `json:"recordedBefore"`
	ExpectedAfter  int64  `json:"expectedAfter"`
	RecordedAfter  int64  `json:"recordedAfter"`
}

// Report is the result of replaying a wallet's entries.
type Report struct {
	WalletID        wallet.ID     `json:"walletId"`
	StoredBalance   int64         `json:"storedBalance"`
	ComputedBalance int64         `json:"computedBalance"`
	EntryCount      int           `json:"entryCount"`
	Discrepancies   []Discrepancy `json:"discrepancies"`
}

// Valid reports whether the stored balance matches the replay and no entry disagrees.
func (r Report) Valid() bool {
	return r.StoredBalance == r.ComputedBalance && len(r.Discrepancies) == 0
}

// Replay walks entries in creation order starting from a zero balance. Entries of other
// wallets are ignored.
func Replay(walletID wallet.ID, storedBalance int64, entries []*Entry) Report {
	own := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && e.WalletID() == walletID {
			own = append(own, e)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		if own[i].Seq() != own[j].Seq() {
			return own[i].Seq() < own[j].Seq()
		}
		return own[i].CreatedAt().Before(own[j].CreatedAt())
	})

	report := Report{
		WalletID:      walletID,
		StoredBalance: storedBalance,
		EntryCount:    len(own),
		Discrepancies: []Discrepancy{},
	}
	var running int64
	for _, e := range own {
		expectedAfter := running + e.Amount()
		if e.BalanceBefore() != running || e.BalanceAfter() != expectedAfter {
			report.Discrepancies = append(report.Discrepancies, Discrepancy{
				EntryID:        e.ID().String(),
				Seq:            e.Seq(),
				Key:            e.Key(),
				ExpectedBefore: running,
				RecordedBefore: e.BalanceBefore(),
				ExpectedAfter:  expectedAfter,
				RecordedAfter:  e.BalanceAfter(),
			})
		}
		running = expectedAfter
	}
	report.ComputedBalance = running
	return report
}
