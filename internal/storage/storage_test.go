package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"PostItBot/internal/config"
	"PostItBot/internal/database"
	"PostItBot/internal/database/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore is an in-memory NoteStore that records how often reads reach it.
type countingStore struct {
	notes  map[uint]models.Note
	nextID uint
	gets   int
	lists  int
	counts int
	stats  int
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{notes: make(map[uint]models.Note)}
}

func (s *countingStore) Create(_ context.Context, question string, userID *int64, username *string) (*models.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	note := models.Note{
		ID:               s.nextID,
		Question:         question,
		CreatedAt:        time.Now(),
		Color:            models.ColorYellow,
		TelegramUserID:   userID,
		TelegramUsername: username,
	}
	s.notes[note.ID] = note
	return &note, nil
}

func (s *countingStore) List(context.Context) ([]models.Note, error) {
	s.lists++
	if s.err != nil {
		return nil, s.err
	}
	var notes []models.Note
	for _, n := range s.notes {
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *countingStore) Get(_ context.Context, id uint) (*models.Note, error) {
	s.gets++
	if s.err != nil {
		return nil, s.err
	}
	note, ok := s.notes[id]
	if !ok {
		return nil, database.ErrNoteNotFound
	}
	return &note, nil
}

func (s *countingStore) Delete(_ context.Context, id uint) (*models.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	note, ok := s.notes[id]
	if !ok {
		return nil, database.ErrNoteNotFound
	}
	delete(s.notes, id)
	return &note, nil
}

func (s *countingStore) Count(context.Context) (int64, error) {
	s.counts++
	return int64(len(s.notes)), s.err
}

func (s *countingStore) DistinctSubmitterCount(context.Context) (int64, error) {
	return 0, s.err
}

func (s *countingStore) MostRecentTimestamp(context.Context) (*time.Time, error) {
	return nil, s.err
}

func (s *countingStore) Stats(context.Context) (database.Stats, error) {
	s.stats++
	return database.Stats{TotalNotes: int64(len(s.notes))}, s.err
}

func TestNoteCache_GetServedFromCacheAfterCreate(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, 0)
	require.NoError(t, err)
	ctx := context.Background()

	note, err := cache.Create(ctx, "cached", nil, nil)
	require.NoError(t, err)

	got, err := cache.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Question)
	assert.Equal(t, 0, backing.gets)

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, 1, stats["cached_notes"])
}

func TestNoteCache_MissFallsThroughOnce(t *testing.T) {
	backing := newCountingStore()
	note, err := backing.Create(context.Background(), "stored before cache", nil, nil)
	require.NoError(t, err)

	cache, err := NewNoteCache(backing, 10, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := cache.Get(context.Background(), note.ID)
		require.NoError(t, err)
		assert.Equal(t, note.ID, got.ID)
	}
	assert.Equal(t, 1, backing.gets)
}

func TestNoteCache_DeleteInvalidates(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, 0)
	require.NoError(t, err)
	ctx := context.Background()

	note, err := cache.Create(ctx, "short lived", nil, nil)
	require.NoError(t, err)

	_, err = cache.Delete(ctx, note.ID)
	require.NoError(t, err)

	_, err = cache.Get(ctx, note.ID)
	assert.ErrorIs(t, err, database.ErrNoteNotFound)

	_, err = cache.Delete(ctx, note.ID)
	assert.ErrorIs(t, err, database.ErrNoteNotFound)
}

func TestNoteCache_EvictsBeyondCapacity(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 2, 0)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cache.Create(ctx, "q", nil, nil)
		require.NoError(t, err)
	}

	stats := cache.GetStats()
	assert.Equal(t, 2, stats["cached_notes"])
	assert.Equal(t, 2, stats["cache_capacity"])
}

func TestNoteCache_ErrorsPassThrough(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 0, 0)
	require.NoError(t, err)

	backing.err = &database.StorageError{Op: "create note", Err: errors.New("disk full")}

	_, err = cache.Create(context.Background(), "q", nil, nil)
	assert.ErrorIs(t, err, database.ErrStorage)

	_, err = cache.Count(context.Background())
	assert.ErrorIs(t, err, database.ErrStorage)
	assert.Equal(t, DefaultCacheSize, cache.GetStats()["cache_capacity"])
}

func TestNoteCache_WithSQLiteStore(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "notes.db"),
	})
	require.NoError(t, err)
	defer database.Close(db)

	cache, err := NewNoteCache(database.NewNoteStore(db), 8, 0)
	require.NoError(t, err)
	ctx := context.Background()

	note, err := cache.Create(ctx, "round trip", nil, nil)
	require.NoError(t, err)

	notes, err := cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, note.ID, notes[0].ID)

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalNotes)
}

func TestNoteCache_ListAndStatsServedUntilWrite(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Create(ctx, "first", nil, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		notes, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 1)

		stats, err := cache.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalNotes)

		count, err := cache.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}
	assert.Equal(t, 1, backing.lists)
	assert.Equal(t, 1, backing.stats)
	assert.Equal(t, 1, backing.counts)
	assert.Equal(t, int64(6), cache.GetStats()["cache_hits"])

	second, err := cache.Create(ctx, "second", nil, nil)
	require.NoError(t, err)

	notes, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalNotes)
	assert.Equal(t, 2, backing.lists)

	_, err = cache.Delete(ctx, second.ID)
	require.NoError(t, err)

	notes, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, 3, backing.lists)
}

func TestNoteCache_FailedDeleteKeepsQueries(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.List(ctx)
	require.NoError(t, err)

	_, err = cache.Delete(ctx, 99)
	require.ErrorIs(t, err, database.ErrNoteNotFound)

	_, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backing.lists)
}

func TestNoteCache_ListReturnsCopy(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Create(ctx, "original", nil, nil)
	require.NoError(t, err)

	notes, err := cache.List(ctx)
	require.NoError(t, err)
	notes[0].Question = "changed"

	notes, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", notes[0].Question)
}

func TestNoteCache_ErrorsAreNotCached(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	backing.err = &database.StorageError{Op: "list notes", Err: errors.New("database is locked")}
	_, err = cache.List(ctx)
	require.ErrorIs(t, err, database.ErrStorage)

	backing.err = nil
	notes, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Equal(t, 2, backing.lists)
}

func TestNoteCache_QueriesExpire(t *testing.T) {
	backing := newCountingStore()
	cache, err := NewNoteCache(backing, 10, 20*time.Millisecond)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Count(ctx)
	require.NoError(t, err)

	// A write from another process bypasses the cache.
	_, err = backing.Create(ctx, "from the admin tool", nil, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		count, err := cache.Count(ctx)
		return err == nil && count == 1
	}, time.Second, 10*time.Millisecond)
}
