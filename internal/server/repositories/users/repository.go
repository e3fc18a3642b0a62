// Package users declares the account store and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidmark/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when no
// row matches; Create returns common.ErrorAlreadyExists when the email is
// taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
