package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

const timeslotCatalogCacheKey = "timeslots:catalog"

type timeslotReader interface {
	ListAll(ctx context.Context) ([]models.Timeslot, error)
	FindByID(ctx context.Context, id string) (*models.Timeslot, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// TimeslotService serves the mostly static timeslot catalog through a
// read-through Redis cache. Cache failures degrade to direct reads.
type TimeslotService struct {
	repo    timeslotReader
	cache   catalogCache
	metrics cacheObserver
	ttl     time.Duration
	logger  *zap.Logger
}

// NewTimeslotService wires catalog dependencies. metrics may be nil.
func NewTimeslotService(repo timeslotReader, cache catalogCache, metrics cacheObserver, ttl time.Duration, logger *zap.Logger) *TimeslotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TimeslotService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

func (s *TimeslotService) observeCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

// All returns the catalog ordered by start time.
func (s *TimeslotService) All(ctx context.Context) ([]models.Timeslot, error) {
	if s.cache != nil {
		var cached []models.Timeslot
		err := s.cache.Get(ctx, timeslotCatalogCacheKey, &cached)
		if err == nil {
			s.observeCache(true)
			return cached, nil
		}
		s.observeCache(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timeslot cache read failed", zap.Error(err))
		}
	}

	slots, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list timeslots")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, timeslotCatalogCacheKey, slots, s.ttl); err != nil {
			s.logger.Warn("timeslot cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}

// ByID resolves one timeslot, preferring the cached catalog.
func (s *TimeslotService) ByID(ctx context.Context, id string) (*models.Timeslot, error) {
	if s.cache != nil {
		var cached []models.Timeslot
		if err := s.cache.Get(ctx, timeslotCatalogCacheKey, &cached); err == nil {
			for i := range cached {
				if cached[i].ID == id {
					return &cached[i], nil
				}
			}
			return nil, appErrors.ErrNotFound
		}
	}
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return slot, nil
}
