package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
)

// reservedCodes are top-level paths the HTTP API serves itself; a link
// under one of them could never be redirected to.
var reservedCodes = map[string]struct{}{
	"auth":    {},
	"healthz": {},
	"metrics": {},
	"url":     {},
}

// IsReservedCode reports whether code collides with a built-in path.
func IsReservedCode(code string) bool {
	_, ok := reservedCodes[code]
	return ok
}

// CodeGenerator produces candidate short codes.
type CodeGenerator interface {
	NewCode() (string, error)
}

// LinkService assigns short codes, resolves them and aggregates per-owner
// creation counts.
type LinkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codes       CodeGenerator
	maxAttempts int
	baseURL     string
	log         logging.Logger

	now func() time.Time
}

func NewLinkService(db *sql.DB, m repomanager.RepositoryManager, codes CodeGenerator, cfg *config.Config, log logging.Logger) *LinkService {
	maxAttempts := cfg.CodeMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &LinkService{
		db:          db,
		repomanager: m,
		codes:       codes,
		maxAttempts: maxAttempts,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		log:         log.With("module", "links"),
		now:         time.Now,
	}
}

// ShortURL returns the public URL of code.
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// Shorten stores longURL under a fresh short code owned by ownerID. A
// reserved code, a code already present in the store, or one lost to a
// concurrent insert triggers another attempt; after maxAttempts ErrorResourceExhausted is returned.
func (s *LinkService) Shorten(ctx context.Context, ownerID, longURL string) (*models.Link, error) {
	const op = "shorten"

	if longURL == "" {
		return nil, common.ErrorInvalidInput
	}

	repo := s.repomanager.Links(s.db)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.codes.NewCode()
		if err != nil {
			return nil, common.Internal(collabCodegen, op, err)
		}

		if IsReservedCode(code) {
			s.log.Debug(ctx, "short code reserved, retrying", "attempt", attempt)
			continue
		}

		_, err = repo.GetByCode(ctx, code)
		if err == nil {
			s.log.Debug(ctx, "short code taken, retrying", "attempt", attempt)
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.Internal(collabLinkStore, op, err)
		}

		link, err := repo.Create(ctx, &models.Link{LongURL: longURL, ShortCode: code, OwnerID: ownerID})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				s.log.Debug(ctx, "short code lost to concurrent insert, retrying", "attempt", attempt)
				continue
			}
			return nil, common.Internal(collabLinkStore, op, err)
		}
		return link, nil
	}

	s.log.Warn(ctx, "short code assignment gave up", "attempts", s.maxAttempts)
	return nil, common.ErrorResourceExhausted
}

// Resolve counts a visit to code and returns its target URL.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	longURL, err := s.repomanager.Links(s.db).IncrementClicks(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.Internal(collabLinkStore, "resolve", err)
	}
	return longURL, nil
}

// ListForOwner returns the owner's links, newest first.
func (s *LinkService) ListForOwner(ctx context.Context, ownerID string) ([]*models.Link, error) {
	links, err := s.repomanager.Links(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, common.Internal(collabLinkStore, "list", err)
	}
	return links, nil
}

// DailyStats counts links created by ownerID today, keyed by day of month.
// Days run from local midnight to local midnight.
func (s *LinkService) DailyStats(ctx context.Context, ownerID string) (map[int]int, error) {
	now := s.now().In(time.Local)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 1)

	return s.bucket(ctx, "daily stats", ownerID, from, to, func(t time.Time) int { return t.Day() })
}

// MonthlyStats counts links created by ownerID this month, keyed by month
// number (1-12).
func (s *LinkService) MonthlyStats(ctx context.Context, ownerID string) (map[int]int, error) {
	now := s.now().In(time.Local)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	return s.bucket(ctx, "monthly stats", ownerID, from, to, func(t time.Time) int { return int(t.Month()) })
}

func (s *LinkService) bucket(ctx context.Context, op, ownerID string, from, to time.Time, key func(time.Time) int) (map[int]int, error) {
	created, err := s.repomanager.Links(s.db).CreatedBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, common.Internal(collabLinkStore, op, err)
	}

	result := make(map[int]int)
	for _, t := range created {
		result[key(t.In(time.Local))]++
	}
	return result, nil
}
