package links

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a link. A taken short code yields common.ErrorAlreadyExists.
	Create(ctx context.Context, link *models.Link) (*models.Link, error)
	GetByCode(ctx context.Context, code string) (*models.Link, error)
	// IncrementClicks bumps the click counter of code atomically and
	// returns the target URL.
	IncrementClicks(ctx context.Context, code string) (string, error)
	// ListByOwner returns the owner's links, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error)
	// CreatedBetween returns creation times of the owner's links in [from, to).
	CreatedBetween(ctx context.Context, ownerID string, from, to time.Time) ([]time.Time, error)
}
