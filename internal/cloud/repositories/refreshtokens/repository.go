// Package refreshtokens declares the repository contract for the opaque
// refresh tokens that renew expired access tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dailygrace/dailygrace/internal/cloud/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID that expires at expires.
	Create(ctx context.Context, userID string, token string, expires time.Time) error

	// Find looks up a refresh token by its opaque token string.
	// It returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token. Deleting a non-existent token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID.
	DeleteByUser(ctx context.Context, userID string) error
}
