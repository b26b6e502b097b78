package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Activate flips active from false to true. It fails with
	// common.ErrorAlreadyActive when the user is already active.
	Activate(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time) error
	// CompleteReset replaces the password hash and clears the reset fields
	// only while token matches the stored one and has not expired at now.
	CompleteReset(ctx context.Context, id string, token string, passwordHash string, now time.Time) error
}
