package users

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, first_name, last_name)
         VALUES ($1, $2, $3, $4)
		 RETURNING id, active, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName).Scan(&user.ID, &user.Active, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, email, password_hash, first_name, last_name, active, reset_token, reset_expires_at, created_at FROM users`

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var (
		resetToken   sql.NullString
		resetExpires sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Active, &resetToken, &resetExpires, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if resetToken.Valid {
		user.ResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		user.ResetExpiresAt = &resetExpires.Time
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`
		 WHERE id = $1
		 `, id)
}

func (r *PostgresRepository) Activate(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET active = TRUE
		 WHERE id = $1 AND active = FALSE
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}

	// nothing changed: either the user is gone or it was active already
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return common.ErrorAlreadyActive
}

func (r *PostgresRepository) SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time) error {
	query :=
		`UPDATE users SET reset_token = $2, reset_expires_at = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRow(res)
}

func (r *PostgresRepository) CompleteReset(ctx context.Context, id string, token string, passwordHash string, now time.Time) error {
	query :=
		`UPDATE users SET password_hash = $3, reset_token = NULL, reset_expires_at = NULL
		 WHERE id = $1 AND reset_token = $2 AND reset_expires_at > $4
		 `

	res, err := r.db.ExecContext(ctx, query, id, token, passwordHash, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
