package engine

import "sort"

// Entry is a ledger snapshot record with the minimal information
// needed for balance calculations. The persisted expense record is
// owned elsewhere; the engine only reads these copies.
type Entry struct {
	Amount float64

	// PayerIDs lists the members who advanced the money. When empty,
	// PaidBy is used as a single implicit payer (entries recorded
	// before multi-payer support carry only that field).
	PayerIDs []string
	PaidBy   string

	// BeneficiaryIDs lists the members who consumed the expense. When
	// empty the whole settlement set is assumed to have benefited.
	BeneficiaryIDs []string
}

// Balance is one member's net position versus the group.
// Value > 0 means the group owes the member; Value < 0 means the
// member owes the group.
type Balance struct {
	MemberID string  `json:"member_id"`
	Value    float64 `json:"value"`
}

// Balances folds a ledger snapshot into one signed balance per
// settlement member.
//
// settlementMemberIDs is the closed set of members to report on,
// typically current household membership. Members outside the set who
// appear as payers or beneficiaries still contribute their shares to
// the members inside it; their own balance is simply not reported.
// Duplicate ids in the set are collapsed to their first occurrence.
//
// The result is sorted descending by value; ties keep the input order
// of settlementMemberIDs. An empty member set yields an empty result.
func Balances(entries []Entry, settlementMemberIDs []string) []Balance {
	if len(settlementMemberIDs) == 0 {
		return nil
	}

	members := make([]string, 0, len(settlementMemberIDs))
	index := make(map[string]int, len(settlementMemberIDs))
	for _, id := range settlementMemberIDs {
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = len(members)
		members = append(members, id)
	}

	totals := make([]float64, len(members))
	for _, e := range entries {
		payers := e.PayerIDs
		if len(payers) == 0 && e.PaidBy != "" {
			payers = []string{e.PaidBy}
		}
		beneficiaries := e.BeneficiaryIDs
		if len(beneficiaries) == 0 {
			beneficiaries = members
		}

		paid := Split(e.Amount, payers)
		consumed := Split(e.Amount, beneficiaries)

		// Accumulate in member order, not map order, so repeated runs
		// produce bit-identical sums.
		for i, id := range members {
			totals[i] += paid[id] - consumed[id]
		}
	}

	balances := make([]Balance, len(members))
	for i, id := range members {
		balances[i] = Balance{MemberID: id, Value: totals[i]}
	}
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Value > balances[j].Value
	})
	return balances
}
