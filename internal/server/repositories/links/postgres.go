// Package links provides storage for shortened links and their click counters.
package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

// PostgresRepository implements link storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, link *models.Link) (*models.Link, error) {
	query :=
		`INSERT INTO links (long_url, short_code, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, clicks, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, link.LongURL, link.ShortCode, link.OwnerID).
		Scan(&link.ID, &link.Clicks, &link.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return link, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	query :=
		`SELECT id, long_url, short_code, owner_id, clicks, created_at FROM links
		 WHERE short_code = $1
		 `

	link := &models.Link{}
	err := r.db.QueryRowContext(ctx, query, code).
		Scan(&link.ID, &link.LongURL, &link.ShortCode, &link.OwnerID, &link.Clicks, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return link, nil
}

func (r *PostgresRepository) IncrementClicks(ctx context.Context, code string) (string, error) {
	query :=
		`UPDATE links SET clicks = clicks + 1
		 WHERE short_code = $1
		 RETURNING long_url
		 `

	var longURL string
	err := r.db.QueryRowContext(ctx, query, code).Scan(&longURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return longURL, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	query :=
		`SELECT id, long_url, short_code, owner_id, clicks, created_at FROM links
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Link, 0)
	for rows.Next() {
		var item models.Link
		if err := rows.Scan(&item.ID, &item.LongURL, &item.ShortCode, &item.OwnerID, &item.Clicks, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) CreatedBetween(ctx context.Context, ownerID string, from, to time.Time) ([]time.Time, error) {
	query :=
		`SELECT created_at FROM links
		 WHERE owner_id = $1 AND created_at >= $2 AND created_at < $3
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
