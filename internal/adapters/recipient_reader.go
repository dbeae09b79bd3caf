package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vitelis_backend/internal/auth"
	"vitelis_backend/internal/notification"
)

// ProfileReader is the slice of the auth module the notification adapter needs.
type ProfileReader interface {
	Profile(ctx context.Context, userID uuid.UUID) (auth.Profile, error)
}

// RecipientReader resolves notification recipients from user accounts.
type RecipientReader struct {
	profiles ProfileReader
}

// NewRecipientReader creates a recipient reader over the auth module.
func NewRecipientReader(profiles ProfileReader) *RecipientReader {
	return &RecipientReader{profiles: profiles}
}

// RecipientEmail returns the account email for a user.
func (a *RecipientReader) RecipientEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := a.profiles.Profile(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("recipient adapter: %w", err)
	}
	return profile.Email, nil
}

var _ notification.RecipientReader = (*RecipientReader)(nil)
