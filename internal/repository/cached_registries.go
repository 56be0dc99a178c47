package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Scotty108/Cascadian-sub002/internal/domain/models"
	domrepo "github.com/Scotty108/Cascadian-sub002/internal/domain/repository"
	pkgcache "github.com/Scotty108/Cascadian-sub002/pkg/cache"
	applogger "github.com/Scotty108/Cascadian-sub002/pkg/logger"
)

// Registry lookups hit the position indexer over HTTP; responses change
// slowly relative to the sweep cadence, so a short TTL removes most of the
// load without staleness risk.
const (
	eliteCacheTTL      = 2 * time.Minute
	categoryCacheTTL   = 30 * time.Minute
	specialistCacheTTL = 10 * time.Minute
)

// CachedEliteRegistry is a read-through cache over an EliteWalletRegistry.
// Cache failures degrade to the upstream fetch, never to an error.
type CachedEliteRegistry struct {
	next  domrepo.EliteWalletRegistry
	cache pkgcache.Service
	l     *applogger.Logger
}

func NewCachedEliteRegistry(next domrepo.EliteWalletRegistry, cache pkgcache.Service, l *applogger.Logger) *CachedEliteRegistry {
	return &CachedEliteRegistry{next: next, cache: cache, l: l}
}

func (r *CachedEliteRegistry) Fetch(ctx context.Context, conditionID string, lookbackHours int) ([]models.ElitePosition, error) {
	key := pkgcache.GenerateKeyWithParams("elites", conditionID, lookbackHours)

	var cached []models.ElitePosition
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && r.l != nil {
		r.l.Warn("elite registry cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	positions, err := r.next.Fetch(ctx, conditionID, lookbackHours)
	if err != nil {
		return nil, err
	}
	if setErr := r.cache.Set(ctx, key, positions, eliteCacheTTL); setErr != nil && r.l != nil {
		r.l.Warn("elite registry cache write failed", applogger.String("key", key), applogger.Error(setErr))
	}
	return positions, nil
}

// CachedCategoryRegistry is a read-through cache over a CategoryRegistry.
type CachedCategoryRegistry struct {
	next  domrepo.CategoryRegistry
	cache pkgcache.Service
	l     *applogger.Logger
}

func NewCachedCategoryRegistry(next domrepo.CategoryRegistry, cache pkgcache.Service, l *applogger.Logger) *CachedCategoryRegistry {
	return &CachedCategoryRegistry{next: next, cache: cache, l: l}
}

type cachedCategory struct {
	Category string `json:"category"`
	Known    bool   `json:"known"`
}

func (r *CachedCategoryRegistry) Fetch(ctx context.Context, marketID string) (string, bool, error) {
	key := pkgcache.GenerateKey("category", marketID)

	var cached cachedCategory
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached.Category, cached.Known, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && r.l != nil {
		r.l.Warn("category registry cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	category, known, err := r.next.Fetch(ctx, marketID)
	if err != nil {
		return "", false, err
	}
	// uncategorized markets are cached too, they are the common case
	if setErr := r.cache.Set(ctx, key, cachedCategory{Category: category, Known: known}, categoryCacheTTL); setErr != nil && r.l != nil {
		r.l.Warn("category registry cache write failed", applogger.String("key", key), applogger.Error(setErr))
	}
	return category, known, nil
}

// CachedSpecialistRegistry is a read-through cache over a SpecialistRegistry.
type CachedSpecialistRegistry struct {
	next  domrepo.SpecialistRegistry
	cache pkgcache.Service
	l     *applogger.Logger
}

func NewCachedSpecialistRegistry(next domrepo.SpecialistRegistry, cache pkgcache.Service, l *applogger.Logger) *CachedSpecialistRegistry {
	return &CachedSpecialistRegistry{next: next, cache: cache, l: l}
}

func (r *CachedSpecialistRegistry) Fetch(ctx context.Context, category string) (map[string]float64, error) {
	key := pkgcache.GenerateKey("specialists", category)

	var cached map[string]float64
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) && r.l != nil {
		r.l.Warn("specialist registry cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	specialists, err := r.next.Fetch(ctx, category)
	if err != nil {
		return nil, err
	}
	if setErr := r.cache.Set(ctx, key, specialists, specialistCacheTTL); setErr != nil && r.l != nil {
		r.l.Warn("specialist registry cache write failed", applogger.String("key", key), applogger.Error(setErr))
	}
	return specialists, nil
}
