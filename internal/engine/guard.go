package engine

import (
	"fmt"
	"math"
)

// ViolationKind identifies which membership precondition failed.
type ViolationKind string

const (
	ViolationBalanceNotZero           ViolationKind = "balance-not-zero"
	ViolationLastOwnerCannotLeave     ViolationKind = "last-owner-cannot-leave"
	ViolationLastOwnerCannotBeRemoved ViolationKind = "last-owner-cannot-be-removed"
	ViolationOwnerMustRemain          ViolationKind = "owner-must-remain"
	ViolationOwnerOnly                ViolationKind = "owner-only"
	ViolationNotLastMember            ViolationKind = "not-last-member"
)

// Violation is a business-rule precondition failure. It is surfaced
// verbatim to the end user at the workflow boundary; it is never
// retried and never fatal to the process.
type Violation struct {
	Kind    ViolationKind
	Message string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// AsViolation unwraps err into a *Violation, or returns nil when err
// is not a guard failure.
func AsViolation(err error) *Violation {
	v, ok := err.(*Violation)
	if !ok {
		return nil
	}
	return v
}

// CheckLeaveBalance gates a member leaving on their balance being
// numerically zero. The balance passed in is computed over the entries
// recorded since the household's last audit checkpoint, not the full
// ledger; older entries are considered settled by that audit.
func CheckLeaveBalance(balance float64) error {
	if math.Abs(balance) > Tolerance {
		return &Violation{
			Kind:    ViolationBalanceNotZero,
			Message: fmt.Sprintf("member balance %.2f must be settled before leaving", balance),
		}
	}
	return nil
}

// CheckLeaveAsOwner forbids the only owner from leaving the household.
func CheckLeaveAsOwner(isOwner bool, ownerCount int) error {
	if isOwner && ownerCount <= 1 {
		return &Violation{
			Kind:    ViolationLastOwnerCannotLeave,
			Message: "the last owner cannot leave; transfer ownership first",
		}
	}
	return nil
}

// CheckRemoveOwner forbids removing the only owner from the household.
func CheckRemoveOwner(targetIsOwner bool, ownerCount int) error {
	if targetIsOwner && ownerCount <= 1 {
		return &Violation{
			Kind:    ViolationLastOwnerCannotBeRemoved,
			Message: "the last owner cannot be removed",
		}
	}
	return nil
}

// CheckDemoteOwner forbids demoting the only owner to a plain member.
func CheckDemoteOwner(targetIsOwner bool, ownerCount int) error {
	if targetIsOwner && ownerCount <= 1 {
		return &Violation{
			Kind:    ViolationOwnerMustRemain,
			Message: "at least one owner must remain",
		}
	}
	return nil
}

// CheckDissolve allows dissolving a household only when the actor is
// an owner and is the sole remaining member.
func CheckDissolve(actorIsOwner bool, memberCount int) error {
	if !actorIsOwner {
		return &Violation{
			Kind:    ViolationOwnerOnly,
			Message: "only an owner can dissolve the household",
		}
	}
	if memberCount != 1 {
		return &Violation{
			Kind:    ViolationNotLastMember,
			Message: "all other members must leave before the household can be dissolved",
		}
	}
	return nil
}
