package storage

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/openverdict/tribunal/internal/ledger"
	"github.com/openverdict/tribunal/pkg/cache"
	"github.com/openverdict/tribunal/pkg/types"
)

// CachedStorage wraps a Storage with a read-through transcript cache.
// Transcripts are content-addressed and immutable, so a cached entry can
// never go stale; the TTL only bounds memory.
type CachedStorage struct {
	inner Storage
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedStorage wraps inner with the given cache.
func NewCachedStorage(inner Storage, c cache.Cache, ttl time.Duration) *CachedStorage {
	return &CachedStorage{inner: inner, cache: c, ttl: ttl}
}

// StoreEvent passes through to the inner storage.
func (s *CachedStorage) StoreEvent(ctx context.Context, event *ledger.Event) error {
	return s.inner.StoreEvent(ctx, event)
}

// StoreTranscript writes through: archive first, then populate the cache.
func (s *CachedStorage) StoreTranscript(ctx context.Context, hash common.Hash, transcript *types.TrialTranscript) error {
	err := s.inner.StoreTranscript(ctx, hash, transcript)
	if err != nil {
		return err
	}
	s.cache.Set(transcriptKey(hash), transcript, s.ttl)
	return nil
}

// GetTranscript serves from the cache when possible, falling back to the
// inner storage and populating the cache on a hit there.
func (s *CachedStorage) GetTranscript(ctx context.Context, hash common.Hash) (*types.TrialTranscript, error) {
	if v, ok := s.cache.Get(transcriptKey(hash)); ok {
		if transcript, ok := v.(*types.TrialTranscript); ok {
			return transcript, nil
		}
	}

	transcript, err := s.inner.GetTranscript(ctx, hash)
	if err != nil {
		return nil, err
	}
	s.cache.Set(transcriptKey(hash), transcript, s.ttl)
	return transcript, nil
}

// Ping passes through to the inner storage.
func (s *CachedStorage) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the inner storage; the cache is owned by the caller.
func (s *CachedStorage) Close() error {
	return s.inner.Close()
}

func transcriptKey(hash common.Hash) string {
	return "transcript:" + hash.Hex()
}
