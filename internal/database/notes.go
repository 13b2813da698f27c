package database

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"PostItBot/internal/database/models"

	"gorm.io/gorm"
)

// Stats is the aggregate view shown by /stats and GET /api/stats.
type Stats struct {
	TotalNotes int64
	TotalUsers int64
	LastNote   *time.Time
}

type NoteStore struct {
	db        *gorm.DB
	now       func() time.Time
	pickColor func() models.Color
}

func NewNoteStore(db *gorm.DB) *NoteStore {
	return &NoteStore{
		db:        db,
		now:       func() time.Time { return time.Now().UTC() },
		pickColor: RandomColor,
	}
}

// RandomColor picks a palette color uniformly at random.
func RandomColor() models.Color {
	return models.Colors[rand.Intn(len(models.Colors))]
}

// Create stores a new note with a fresh id, a random color and the current
// time, and returns the persisted record.
func (s *NoteStore) Create(ctx context.Context, question string, userID *int64, username *string) (*models.Note, error) {
	note := &models.Note{
		Question:         question,
		CreatedAt:        s.now(),
		Color:            s.pickColor(),
		TelegramUserID:   userID,
		TelegramUsername: username,
	}

	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, storageErr("create note", err)
	}
	return note, nil
}

// List returns every note, newest first.
func (s *NoteStore) List(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&notes).Error
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	return notes, nil
}

func (s *NoteStore) Get(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storageErr("get note", err)
	}
	return &note, nil
}

// Delete removes the note and returns it as it was before removal.
func (s *NoteStore) Delete(ctx context.Context, id uint) (*models.Note, error) {
	var deleted *models.Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note models.Note
		if err := tx.Where("id = ?", id).First(&note).Error; err != nil {
			return err
		}
		if err := tx.Delete(&note).Error; err != nil {
			return err
		}
		deleted = &note
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storageErr("delete note", err)
	}
	return deleted, nil
}

func (s *NoteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Note{}).Count(&count).Error; err != nil {
		return 0, storageErr("count notes", err)
	}
	return count, nil
}

// DistinctSubmitterCount counts distinct non-null telegram user ids.
func (s *NoteStore) DistinctSubmitterCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Note{}).
		Where("telegram_user_id IS NOT NULL").
		Distinct("telegram_user_id").
		Count(&count).Error
	if err != nil {
		return 0, storageErr("count submitters", err)
	}
	return count, nil
}

// MostRecentTimestamp returns the creation time of the newest note, or nil
// when there are no notes.
func (s *NoteStore) MostRecentTimestamp(ctx context.Context) (*time.Time, error) {
	var note models.Note
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("latest note", err)
	}
	return &note.CreatedAt, nil
}

func (s *NoteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error

	if stats.TotalNotes, err = s.Count(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalUsers, err = s.DistinctSubmitterCount(ctx); err != nil {
		return Stats{}, err
	}
	if stats.LastNote, err = s.MostRecentTimestamp(ctx); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
