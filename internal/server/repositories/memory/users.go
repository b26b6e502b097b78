// Package memory provides thread-safe in-memory repositories. They honour the
// same contracts as the PostgreSQL ones and back the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/google/uuid"
)

type UsersRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// copyUser detaches a stored user from callers.
func copyUser(u *models.User) *models.User {
	c := *u
	if u.ResetToken != nil {
		tok := *u.ResetToken
		c.ResetToken = &tok
	}
	if u.ResetExpiresAt != nil {
		exp := *u.ResetExpiresAt
		c.ResetExpiresAt = &exp
	}
	return &c
}

func (r *UsersRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	user.ID = uuid.NewString()
	user.Active = false
	user.CreatedAt = r.now()

	r.byID[user.ID] = copyUser(user)
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *UsersRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(r.byID[id]), nil
}

func (r *UsersRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *UsersRepository) Activate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if u.Active {
		return common.ErrorAlreadyActive
	}
	u.Active = true
	return nil
}

func (r *UsersRepository) SetResetToken(_ context.Context, id string, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ResetToken = &token
	u.ResetExpiresAt = &expiresAt
	return nil
}

func (r *UsersRepository) CompleteReset(_ context.Context, id string, token string, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.ResetToken == nil || u.ResetExpiresAt == nil {
		return common.ErrorNotFound
	}
	if *u.ResetToken != token || !u.ResetExpiresAt.After(now) {
		return common.ErrorNotFound
	}

	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetExpiresAt = nil
	return nil
}

// Delete removes a user. Used to simulate the store forgetting an identity.
func (r *UsersRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
}
