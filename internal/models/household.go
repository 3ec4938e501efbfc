package models

// Role is a member's permission level inside a household.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

// Household is a group of people who share expenses.
type Household struct {
	// ID is the unique identifier for the household (UUID format).
	ID string

	// Name is the display name (e.g. "Elm Street Flat").
	Name string

	// CreatedAt is the Unix timestamp when the household was created.
	CreatedAt int64
}

// Member is one user's membership in a household.
type Member struct {
	HouseholdID string
	UserID      string
	Role        Role

	// JoinedAt is the Unix timestamp when the user joined.
	JoinedAt int64
}

// Audit is a cash-audit checkpoint. Entries recorded before the latest
// checkpoint are considered settled and are excluded from the balance
// used by the leave guard.
type Audit struct {
	ID          string
	HouseholdID string

	// CreatedBy is the user who requested the audit.
	CreatedBy string

	// CreatedAt is the Unix timestamp of the checkpoint.
	CreatedAt int64
}
