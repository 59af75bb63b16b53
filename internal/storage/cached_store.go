package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"maumcare/internal/models"
	"maumcare/internal/redis"
)

const (
	listCacheKeyFmt   = "maumcare:conversations:list:%d:%t"
	generationKey     = "maumcare:conversations:generation"
	invalidateChannel = "maumcare:conversations:invalidate"
	defaultCacheTTL   = 30 * time.Minute
)

type localListing struct {
	items   []models.ConversationSummary
	expires time.Time
}

// CachedStore caches conversation listings in Redis and in memory. Redis
// listings are keyed by a shared generation that every save bumps, so a
// listing read before a save can only land under a key nobody reads anymore.
// Saves also tell other instances to drop their memory copy over pub/sub.
type CachedStore struct {
	inner Store
	cache *redis.Client
	ttl   time.Duration

	mu    sync.Mutex
	local map[bool]localListing
	gen   uint64 // bumped on every local drop
}

// NewCachedStore decorates inner. The subscription lives until ctx is done.
func NewCachedStore(ctx context.Context, inner Store, cache *redis.Client, ttl time.Duration) (*CachedStore, error) {
	if inner == nil || cache == nil {
		return nil, errors.New("store and cache required")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	s := &CachedStore{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		local: make(map[bool]localListing),
	}
	if err := cache.Subscribe(ctx, invalidateChannel, func(string) { s.dropLocal() }); err != nil {
		return nil, fmt.Errorf("listen for invalidation: %w", err)
	}
	return s, nil
}

func listCacheKey(generation int64, includeTest bool) string {
	return fmt.Sprintf(listCacheKeyFmt, generation, includeTest)
}

// generation returns the shared listing generation; ok is false when Redis
// cannot be read and the listing must not be cached there.
func (s *CachedStore) generation(ctx context.Context) (int64, bool) {
	raw, err := s.cache.Get(ctx, generationKey)
	if errors.Is(err, redis.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		log.Printf("conversation cache generation read failed: %v", err)
		return 0, false
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("conversation cache generation corrupt: %q", raw)
		return 0, false
	}
	return gen, true
}

func (s *CachedStore) Save(ctx context.Context, record *models.ConversationRecord) (string, error) {
	key, err := s.inner.Save(ctx, record)
	if err != nil {
		return "", err
	}
	s.dropLocal()
	if _, err := s.cache.Incr(ctx, generationKey); err != nil {
		log.Printf("conversation cache invalidate failed: %v", err)
	}
	if err := s.cache.Publish(ctx, invalidateChannel, key); err != nil {
		log.Printf("conversation cache publish failed: %v", err)
	}
	return key, nil
}

func (s *CachedStore) List(ctx context.Context, includeTest bool) ([]models.ConversationSummary, error) {
	if items, ok := s.getLocal(includeTest); ok {
		return items, nil
	}
	localGen := s.localGeneration()
	gen, shared := s.generation(ctx)

	if shared {
		raw, err := s.cache.Get(ctx, listCacheKey(gen, includeTest))
		if err == nil {
			var items []models.ConversationSummary
			if err := json.Unmarshal([]byte(raw), &items); err == nil {
				s.setLocal(localGen, includeTest, items)
				return items, nil
			}
			log.Printf("conversation cache decode failed: %v", err)
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			log.Printf("conversation cache read failed: %v", err)
		}
	}

	items, err := s.inner.List(ctx, includeTest)
	if err != nil {
		return nil, err
	}
	if shared {
		if data, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, listCacheKey(gen, includeTest), data, s.ttl); err != nil {
				log.Printf("conversation cache write failed: %v", err)
			}
		}
	}
	s.setLocal(localGen, includeTest, items)
	return items, nil
}

func (s *CachedStore) Get(ctx context.Context, key string, isTest bool) (*models.ConversationRecord, error) {
	return s.inner.Get(ctx, key, isTest)
}

func (s *CachedStore) getLocal(includeTest bool) ([]models.ConversationSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.local[includeTest]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	out := make([]models.ConversationSummary, len(entry.items))
	copy(out, entry.items)
	return out, true
}

func (s *CachedStore) localGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// setLocal keeps items unless a drop happened since gen was read.
func (s *CachedStore) setLocal(gen uint64, includeTest bool, items []models.ConversationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	kept := make([]models.ConversationSummary, len(items))
	copy(kept, items)
	s.local[includeTest] = localListing{items: kept, expires: time.Now().Add(s.ttl)}
}

func (s *CachedStore) dropLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = make(map[bool]localListing)
	s.gen++
}
