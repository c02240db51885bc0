// Package users declares the server-side repository contract for user
// accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/tripkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
