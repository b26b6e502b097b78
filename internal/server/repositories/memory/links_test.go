package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinks_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewLinksRepository()

	l, err := r.Create(ctx, &models.Link{LongURL: "https://a", ShortCode: "abc", OwnerID: "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.False(t, l.CreatedAt.IsZero())

	_, err = r.Create(ctx, &models.Link{LongURL: "https://b", ShortCode: "abc", OwnerID: "u2"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := r.GetByCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "https://a", got.LongURL)

	_, err = r.GetByCode(ctx, "zzz")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLinks_IncrementClicksConcurrent(t *testing.T) {
	ctx := context.Background()
	r := NewLinksRepository()
	_, err := r.Create(ctx, &models.Link{LongURL: "https://a", ShortCode: "abc", OwnerID: "u1"})
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := r.IncrementClicks(ctx, "abc")
			assert.NoError(t, err)
			assert.Equal(t, "https://a", url)
		}()
	}
	wg.Wait()

	got, _ := r.GetByCode(ctx, "abc")
	assert.Equal(t, int64(n), got.Clicks)

	_, err = r.IncrementClicks(ctx, "none")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLinks_ListByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewLinksRepository()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, code := range []string{"c1", "c2", "c3"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		r.SetClock(func() time.Time { return ts })
		_, err := r.Create(ctx, &models.Link{LongURL: "https://" + code, ShortCode: code, OwnerID: "u1"})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, &models.Link{LongURL: "https://x", ShortCode: "x", OwnerID: "u2"})
	require.NoError(t, err)

	got, err := r.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c3", got[0].ShortCode)
	assert.Equal(t, "c2", got[1].ShortCode)
	assert.Equal(t, "c1", got[2].ShortCode)

	none, err := r.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLinks_CreatedBetweenHalfOpen(t *testing.T) {
	ctx := context.Background()
	r := NewLinksRepository()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	for code, ts := range map[string]time.Time{
		"before": from.Add(-time.Nanosecond),
		"start":  from,
		"mid":    from.Add(12 * time.Hour),
		"end":    to,
	} {
		_, err := r.Create(ctx, &models.Link{ShortCode: code, OwnerID: "u1", CreatedAt: ts})
		require.NoError(t, err)
	}
	_, err := r.Create(ctx, &models.Link{ShortCode: "other", OwnerID: "u2", CreatedAt: from})
	require.NoError(t, err)

	got, err := r.CreatedBetween(ctx, "u1", from, to)
	require.NoError(t, err)
	assert.ElementsMatch(t, []time.Time{from, from.Add(12 * time.Hour)}, got)
}

func TestRepositoryManager(t *testing.T) {
	m := NewRepositoryManager()
	assert.NoError(t, m.RunMigrations(context.Background(), nil))
	assert.Same(t, m.UsersRepo, m.Users(nil))
	assert.Same(t, m.LinksRepo, m.Links(nil))
}
