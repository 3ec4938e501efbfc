package engine

import (
	"math"
	"sort"
)

// Share is one member's net position for a single previewed entry.
type Share struct {
	MemberID string  `json:"member_id"`
	Value    float64 `json:"value"`
}

// Preview computes the "who is out of pocket" breakdown for a draft
// entry that does not exist in the ledger yet. It returns only members
// whose paid share exceeds their consumed share by more than Tolerance:
// this is a one-entry reimbursement view, not a balance snapshot, so
// zero and negative positions are omitted.
//
// A non-finite or negative amount, or an empty payer or beneficiary
// set, yields an empty result rather than an error; the caller
// validates entry shape before persisting, not before previewing.
//
// The result is sorted descending by value; ties keep the first-seen
// order of ids across payerIDs then beneficiaryIDs.
func Preview(amount float64, payerIDs, beneficiaryIDs []string) []Share {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil
	}
	if len(payerIDs) == 0 || len(beneficiaryIDs) == 0 {
		return nil
	}

	paid := Split(amount, payerIDs)
	consumed := Split(amount, beneficiaryIDs)

	union := make([]string, 0, len(payerIDs)+len(beneficiaryIDs))
	seen := make(map[string]bool, len(payerIDs)+len(beneficiaryIDs))
	for _, ids := range [][]string{payerIDs, beneficiaryIDs} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}

	var shares []Share
	for _, id := range union {
		if v := paid[id] - consumed[id]; v > Tolerance {
			shares = append(shares, Share{MemberID: id, Value: v})
		}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Value > shares[j].Value
	})
	return shares
}
