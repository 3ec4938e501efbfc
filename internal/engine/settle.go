package engine

import "sort"

// Transfer is a recommended payment that reduces the sender's deficit
// and the receiver's surplus by Amount.
type Transfer struct {
	FromMemberID string  `json:"from_member_id"`
	ToMemberID   string  `json:"to_member_id"`
	Amount       float64 `json:"amount"`
}

// Plan produces a small set of directed transfers that nets out every
// balance, using the default Tolerance.
func Plan(balances []Balance) []Transfer {
	return PlanWithTolerance(balances, Tolerance)
}

// PlanWithTolerance partitions balances into creditors (> tolerance)
// and debtors (< -tolerance) and greedily matches the largest
// remaining creditor against the largest remaining debtor, transferring
// the smaller of the two remainders each round.
//
// The greedy strategy emits at most creditors+debtors-1 transfers. A
// provably minimal transfer count is NP-hard in general; this
// approximation is deterministic, runs in O(n log n), and matches the
// behaviour users already see. Keep the (balances) -> transfers
// contract stable so an optimal solver could be swapped in later.
//
// Transfers are returned in generation order, largest pairings first.
// On balanced input the plan exactly nets out every balance.
func PlanWithTolerance(balances []Balance, tolerance float64) []Transfer {
	var creditors, debtors []Balance
	for _, b := range balances {
		switch {
		case b.Value > tolerance:
			creditors = append(creditors, b)
		case b.Value < -tolerance:
			// Flip debtors to positive magnitudes for the merge below.
			debtors = append(debtors, Balance{MemberID: b.MemberID, Value: -b.Value})
		}
	}
	byMagnitude := func(s []Balance) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].Value != s[j].Value {
				return s[i].Value > s[j].Value
			}
			return s[i].MemberID < s[j].MemberID
		}
	}
	sort.Slice(creditors, byMagnitude(creditors))
	sort.Slice(debtors, byMagnitude(debtors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].Value
		if creditors[j].Value < amount {
			amount = creditors[j].Value
		}

		if amount > tolerance {
			transfers = append(transfers, Transfer{
				FromMemberID: debtors[i].MemberID,
				ToMemberID:   creditors[j].MemberID,
				Amount:       amount,
			})
		}

		debtors[i].Value -= amount
		creditors[j].Value -= amount
		if debtors[i].Value <= tolerance {
			i++
		}
		if creditors[j].Value <= tolerance {
			j++
		}
	}
	return transfers
}
