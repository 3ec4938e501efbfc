// Package engine implements the expense-settlement core: even share
// splitting, ledger balance calculation, draft-entry previews, greedy
// debt simplification, and the membership precondition guards.
//
// Every function here is pure and deterministic: identical inputs
// (including slice ordering) always produce identical outputs. The
// engine never touches storage; callers hand it snapshots and consume
// freshly allocated results.
package engine

// Tolerance is the currency slack below which a balance or transfer is
// treated as zero. The value is a public contract shared with the UI
// and with previously stored data; do not change it.
const Tolerance = 0.004

// Split divides amount into len(memberIDs) equal shares, keyed by
// member id. A member listed more than once accumulates one share per
// occurrence; callers that want a per-member split must de-duplicate
// first. An empty id list returns an empty map: the amount is assigned
// to no one.
//
// No rounding is applied; formatting is a presentation concern.
func Split(amount float64, memberIDs []string) map[string]float64 {
	shares := make(map[string]float64, len(memberIDs))
	if len(memberIDs) == 0 {
		return shares
	}
	per := amount / float64(len(memberIDs))
	for _, id := range memberIDs {
		shares[id] += per
	}
	return shares
}
