// Package users declares the account repository contract.
package users

import (
	"context"

	"github.com/dailygrace/dailygrace/internal/cloud/models"
)

type Repository interface {
	// Create inserts user and fills in its generated id. An email that is
	// already registered yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail and GetByID return common.ErrorNotFound for no match.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Delete removes the account. Rows owned by it go with it.
	Delete(ctx context.Context, id string) error
}
