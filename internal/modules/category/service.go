package category

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service defines the category module's business logic.
type Service interface {
	List(ctx context.Context) ([]Category, error)

	// Get resolves a category by numeric id or case-insensitive name.
	Get(ctx context.Context, identifier string) (*Category, error)

	// Nearest returns the closest category to the given point plus every
	// category inside radiusKM (all of them when radiusKM is nil), sorted
	// nearest first. Categories without coordinates are skipped.
	Nearest(ctx context.Context, lat, lon float64, radiusKM *float64) (*NearbyCategory, []NearbyCategory, error)

	Search(ctx context.Context, q string) ([]Category, error)
}

type service struct {
	repo     Repository
	logger   *slog.Logger
	cache    *redis.Client
	cacheTTL time.Duration
}

// Config holds the dependencies for the category service.
type Config struct {
	Repo     Repository
	Logger   *slog.Logger
	Cache    *redis.Client
	CacheTTL time.Duration
}

// NewService creates a new category service with the given dependencies.
func NewService(cfg *Config) Service {
	return &service{
		repo:     cfg.Repo,
		logger:   cfg.Logger,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
}

const listCacheKey = "categories:all"

// List returns the full catalog, cache-aside: the cached copy is served until
// its TTL lapses; cache errors fall back to the database.
func (s *service) List(ctx context.Context) ([]Category, error) {
	if cached, err := s.cache.Get(ctx, listCacheKey).Bytes(); err == nil {
		var cats []Category
		if err := json.Unmarshal(cached, &cats); err == nil {
			return cats, nil
		}
		s.logger.Warn("dropping undecodable category cache entry")
		s.cache.Del(ctx, listCacheKey)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("category cache read failed", "error", err)
	}

	cats, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, ErrInternal.WithCause(err)
	}

	if payload, err := json.Marshal(cats); err == nil {
		if err := s.cache.Set(ctx, listCacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("category cache write failed", "error", err)
		}
	}
	return cats, nil
}

func (s *service) Get(ctx context.Context, identifier string) (*Category, error) {
	var (
		cat *Category
		err error
	)
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil {
		cat, err = s.repo.FindByID(ctx, id)
	} else {
		cat, err = s.repo.FindByName(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get category", "identifier", identifier, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return cat, nil
}

func (s *service) Nearest(ctx context.Context, lat, lon float64, radiusKM *float64) (*NearbyCategory, []NearbyCategory, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	var nearby []NearbyCategory
	for _, cat := range cats {
		if cat.Latitude == nil || cat.Longitude == nil {
			continue
		}
		dist := haversineKM(lat, lon, *cat.Latitude, *cat.Longitude)
		if radiusKM != nil && dist > *radiusKM {
			continue
		}
		nearby = append(nearby, NearbyCategory{
			Category:   cat,
			DistanceKM: math.Round(dist*100) / 100,
		})
	}
	if len(nearby) == 0 {
		return nil, nil, ErrNoneNearby
	}

	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKM < nearby[j].DistanceKM })
	return &nearby[0], nearby, nil
}

func (s *service) Search(ctx context.Context, q string) ([]Category, error) {
	cats, err := s.repo.Search(ctx, q)
	if err != nil {
		s.logger.Error("failed to search categories", "q", q, "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	return cats, nil
}
