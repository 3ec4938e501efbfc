package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Household membership references users
// by ID; display names are presentation only.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's login email (unique).
	Email string

	// DisplayName is shown in household member lists.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
