// Package verificationtokens declares the server-side repository contract
// for one-time email verification tokens.
package verificationtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new verification token for userID expiring at now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a token and returns its metadata, or a not-found error.
	Find(ctx context.Context, token string) (*models.VerificationToken, error)

	// Delete removes a token after it has been consumed.
	Delete(ctx context.Context, token string) error
}
