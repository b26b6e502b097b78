package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/google/uuid"
)

type LinksRepository struct {
	mu     sync.RWMutex
	byCode map[string]*models.Link
	now    func() time.Time
}

func NewLinksRepository() *LinksRepository {
	return &LinksRepository{
		byCode: make(map[string]*models.Link),
		now:    time.Now,
	}
}

// SetClock replaces the creation-time source.
func (r *LinksRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *LinksRepository) Create(_ context.Context, link *models.Link) (*models.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[link.ShortCode]; ok {
		return nil, common.ErrorAlreadyExists
	}

	link.ID = uuid.NewString()
	link.Clicks = 0
	if link.CreatedAt.IsZero() {
		link.CreatedAt = r.now()
	}

	c := *link
	r.byCode[link.ShortCode] = &c
	return link, nil
}

func (r *LinksRepository) GetByCode(_ context.Context, code string) (*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byCode[code]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *l
	return &c, nil
}

func (r *LinksRepository) IncrementClicks(_ context.Context, code string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byCode[code]
	if !ok {
		return "", common.ErrorNotFound
	}
	l.Clicks++
	return l.LongURL, nil
}

func (r *LinksRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Link, 0)
	for _, l := range r.byCode {
		if l.OwnerID == ownerID {
			c := *l
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *LinksRepository) CreatedBetween(_ context.Context, ownerID string, from, to time.Time) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []time.Time
	for _, l := range r.byCode {
		if l.OwnerID != ownerID {
			continue
		}
		if !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			result = append(result, l.CreatedAt)
		}
	}
	return result, nil
}
