package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Simplici0/grainexport/internal/cache"
)

// Cache is the subset of a key/value cache CachedStore needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, key string) error
}

// CachedStore adds a read-through cache in front of Get. Replace and Delete
// invalidate the cached entry. Cache failures are logged and never fail a call.
//
// Entries are keyed by a per-estimate generation that every write bumps after it
// commits. A read that raced with a write fills the previous generation's key, which
// no later read consults.
type CachedStore struct {
	Store
	cache Cache
	log   *zap.Logger
}

func NewCachedStore(store Store, c Cache, log *zap.Logger) *CachedStore {
	return &CachedStore{Store: store, cache: c, log: log}
}

func generationKey(id string) string {
	return "estimate:" + id + ":gen"
}

func entryKey(id string, generation int64) string {
	return "estimate:" + id + ":g" + strconv.FormatInt(generation, 10)
}

// generation returns the current generation of id. A missing counter is generation 0.
func (s *CachedStore) generation(ctx context.Context, id string) (int64, error) {
	data, err := s.cache.Get(ctx, generationKey(id))
	if errors.Is(err, cache.ErrMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cache generation %q: %w", data, err)
	}
	return n, nil
}

func (s *CachedStore) Get(ctx context.Context, id string) (Estimate, error) {
	gen, err := s.generation(ctx, id)
	if err != nil {
		s.log.Warn("estimate cache generation read failed", zap.String("id", id), zap.Error(err))
		return s.Store.Get(ctx, id)
	}
	key := entryKey(id, gen)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var e Estimate
		if err := json.Unmarshal(data, &e); err == nil {
			return e, nil
		}
		s.log.Warn("discarding undecodable cached estimate", zap.String("id", id))
	case !errors.Is(err, cache.ErrMiss):
		s.log.Warn("estimate cache read failed", zap.String("id", id), zap.Error(err))
	}

	e, err := s.Store.Get(ctx, id)
	if err != nil {
		return Estimate{}, err
	}

	if data, err := json.Marshal(e); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.log.Warn("estimate cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return e, nil
}

func (s *CachedStore) Replace(ctx context.Context, e Estimate, expectedVersion int64) (Estimate, error) {
	stored, err := s.Store.Replace(ctx, e, expectedVersion)
	if err != nil {
		return Estimate{}, err
	}
	s.invalidate(ctx, e.ID)
	return stored, nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// invalidate moves id to a new generation and drops the entry of the previous one.
func (s *CachedStore) invalidate(ctx context.Context, id string) {
	gen, err := s.cache.Incr(ctx, generationKey(id))
	if err != nil {
		s.log.Warn("estimate cache invalidation failed", zap.String("id", id), zap.Error(err))
		return
	}
	if err := s.cache.Del(ctx, entryKey(id, gen-1)); err != nil {
		s.log.Warn("stale estimate cache entry not removed", zap.String("id", id), zap.Error(err))
	}
}
