// Package auth provides user accounts, login and JWT issuance.
// This file defines the types other modules may import.
package auth

import (
	"github.com/google/uuid"
)

// Profile is the user information shared with other modules.
type Profile struct {
	ID          uuid.UUID
	Email       string
	CompanyName string
	Role        string
}
