package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/campus-records/model"
)

const searchGenerationKey = "campus:search:generation"

// SearchCache keeps search results in Redis. Entries are namespaced by a
// generation counter; bumping the counter orphans every cached result, and
// the orphans expire on their own TTL.
type SearchCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewSearchCache creates a search cache with the given entry TTL
func NewSearchCache(cache *RedisCache, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SearchCache{cache: cache, ttl: ttl}
}

// GetSearch returns cached results for query and the generation it looked
// under. ok is false on a miss; the generation is still valid for SetSearch.
func (s *SearchCache) GetSearch(ctx context.Context, query string) ([]model.SearchResult, string, bool, error) {
	generation, err := s.generation(ctx)
	if err != nil {
		return nil, "", false, err
	}

	var results []model.SearchResult
	if err := s.cache.GetJSON(ctx, searchKey(generation, query), &results); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, generation, false, nil
		}
		return nil, "", false, err
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	return results, generation, true, nil
}

// SetSearch stores results for query under generation. A generation that was
// bumped in between leaves the entry unreachable until it expires.
func (s *SearchCache) SetSearch(ctx context.Context, generation, query string, results []model.SearchResult) error {
	return s.cache.SetJSON(ctx, searchKey(generation, query), results, s.ttl)
}

// InvalidateSearch moves to a new generation
func (s *SearchCache) InvalidateSearch(ctx context.Context) error {
	_, err := s.cache.Increment(ctx, searchGenerationKey)
	return err
}

func (s *SearchCache) generation(ctx context.Context) (string, error) {
	generation, err := s.cache.Get(ctx, searchGenerationKey)
	if errors.Is(err, ErrNotFound) {
		return "0", nil
	}
	return generation, err
}

func searchKey(generation, query string) string {
	return fmt.Sprintf("campus:search:%s:%s", generation, strings.ToLower(query))
}
