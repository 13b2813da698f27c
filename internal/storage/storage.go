package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"PostItBot/internal/database"
	"PostItBot/internal/database/models"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultCacheSize = 1000
	DefaultQueryTTL  = 30 * time.Second
)

const (
	keyList        = "notes:list"
	keyStats       = "notes:stats"
	keyCount       = "notes:count"
	keySubmitters  = "notes:submitters"
	keyMostRecent  = "notes:most_recent"
	queryCacheSize = 8
)

// NoteStore is the subset of database.NoteStore served through the cache.
type NoteStore interface {
	Create(ctx context.Context, question string, userID *int64, username *string) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id uint) (*models.Note, error)
	Delete(ctx context.Context, id uint) (*models.Note, error)
	Count(ctx context.Context) (int64, error)
	DistinctSubmitterCount(ctx context.Context) (int64, error)
	MostRecentTimestamp(ctx context.Context) (*time.Time, error)
	Stats(ctx context.Context) (database.Stats, error)
}

// NoteCache sits in front of the note store. Single notes live in an LRU
// keyed by id; notes are never updated, so they are only dropped on delete.
// The list and the aggregates live in a small expiring LRU that every write
// through the cache purges. The TTL bounds staleness for writes made by
// other processes, such as postit-admin.
type NoteCache struct {
	store   NoteStore
	notes   *lru.Cache[uint, models.Note]
	queries *expirable.LRU[string, any]
	size    int

	// mu orders query fills against invalidation; generation tells a fill
	// that a write happened while it was reading the store.
	mu         sync.Mutex
	generation atomic.Uint64

	hits   atomic.Int64
	misses atomic.Int64
}

func NewNoteCache(store NoteStore, size int, ttl time.Duration) (*NoteCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultQueryTTL
	}

	notes, err := lru.New[uint, models.Note](size)
	if err != nil {
		return nil, err
	}

	return &NoteCache{
		store:   store,
		notes:   notes,
		queries: expirable.NewLRU[string, any](queryCacheSize, nil, ttl),
		size:    size,
	}, nil
}

// cached returns the value stored under key, loading it from the store on a
// miss. A loaded value is kept only if no write invalidated the cache while
// it was being read.
func cached[T any](c *NoteCache, key string, load func() (T, error)) (T, error) {
	if v, ok := c.queries.Get(key); ok {
		if typed, ok := v.(T); ok {
			c.hits.Add(1)
			return typed, nil
		}
	}
	c.misses.Add(1)

	gen := c.generation.Load()
	v, err := load()
	if err != nil {
		return v, err
	}

	c.mu.Lock()
	if c.generation.Load() == gen {
		c.queries.Add(key, v)
	}
	c.mu.Unlock()
	return v, nil
}

func (c *NoteCache) invalidate() {
	c.mu.Lock()
	c.generation.Add(1)
	c.queries.Purge()
	c.mu.Unlock()
}

func (c *NoteCache) Create(ctx context.Context, question string, userID *int64, username *string) (*models.Note, error) {
	note, err := c.store.Create(ctx, question, userID, username)
	if err != nil {
		return nil, err
	}
	c.invalidate()
	c.notes.Add(note.ID, *note)
	return note, nil
}

// List returns a copy, so callers may modify the slice freely.
func (c *NoteCache) List(ctx context.Context) ([]models.Note, error) {
	notes, err := cached(c, keyList, func() ([]models.Note, error) {
		return c.store.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(notes), nil
}

func (c *NoteCache) Get(ctx context.Context, id uint) (*models.Note, error) {
	if note, ok := c.notes.Get(id); ok {
		c.hits.Add(1)
		return &note, nil
	}
	c.misses.Add(1)

	note, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.notes.Add(id, *note)
	return note, nil
}

func (c *NoteCache) Delete(ctx context.Context, id uint) (*models.Note, error) {
	note, err := c.store.Delete(ctx, id)
	if err == nil || errors.Is(err, database.ErrNoteNotFound) {
		c.notes.Remove(id)
	}
	if err == nil {
		c.invalidate()
	}
	return note, err
}

func (c *NoteCache) Count(ctx context.Context) (int64, error) {
	return cached(c, keyCount, func() (int64, error) {
		return c.store.Count(ctx)
	})
}

func (c *NoteCache) DistinctSubmitterCount(ctx context.Context) (int64, error) {
	return cached(c, keySubmitters, func() (int64, error) {
		return c.store.DistinctSubmitterCount(ctx)
	})
}

func (c *NoteCache) MostRecentTimestamp(ctx context.Context) (*time.Time, error) {
	return cached(c, keyMostRecent, func() (*time.Time, error) {
		return c.store.MostRecentTimestamp(ctx)
	})
}

func (c *NoteCache) Stats(ctx context.Context) (database.Stats, error) {
	return cached(c, keyStats, func() (database.Stats, error) {
		return c.store.Stats(ctx)
	})
}

// GetStats reports cache occupancy for the periodic monitor log.
func (c *NoteCache) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"cached_notes":   c.notes.Len(),
		"cached_queries": c.queries.Len(),
		"cache_capacity": c.size,
		"cache_hits":     c.hits.Load(),
		"cache_misses":   c.misses.Load(),
	}
}
